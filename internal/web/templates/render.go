// Package templates holds the HTML components of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// page accumulates HTML into w and remembers the first write error.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s HTML-escaped.
func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

// rawf formats into the page. Arguments are written as-is, so callers
// escape untrusted values with templ.EscapeString first.
func (p *page) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

func (p *page) component(ctx context.Context, c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

// component adapts a page-writing function to templ.Component.
func component(fn func(ctx context.Context, p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		fn(ctx, p)
		return p.err
	})
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
main{max-width:1100px;margin:0 auto;padding:24px}
h1{font-size:1.6rem}
.card{background:#fff;border-radius:8px;padding:16px 20px;margin-bottom:16px;box-shadow:0 1px 2px rgba(0,0,0,.08)}
.alert{border-radius:6px;padding:12px 16px;margin-bottom:16px}
.alert-error{background:#fdecea;color:#8a1c12}
.alert-warn{background:#fff4e5;color:#7a4b00}
.alert-ok{background:#e8f5e9;color:#1b5e20}
table{width:100%;border-collapse:collapse}
th,td{text-align:left;padding:6px 8px;border-bottom:1px solid #e5e7eb}
.bar{background:#e5e7eb;border-radius:4px;height:8px;min-width:120px}
.bar span{display:block;background:#2e7d32;height:8px;border-radius:4px}
.btn{display:inline-block;padding:8px 14px;border-radius:6px;border:0;background:#1565c0;color:#fff;cursor:pointer;text-decoration:none;margin:2px}
.btn-secondary{background:#607d8b}
.stats span{margin-right:18px}
.podium{display:flex;gap:16px}
.podium div{flex:1;background:#f6f7f9;border-radius:6px;padding:10px 14px}
.podium b{display:block;font-size:1.2rem}
`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, p *page) {
		p.raw(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title><style>` + styles + `</style></head><body><main>`)
		p.raw(`<h1>💰 Sistema de Cashback</h1>`)
		p.component(ctx, body)
		p.raw(`</main></body></html>`)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(ctx context.Context, p *page) {
		p.raw(`<div class="alert alert-error" role="alert"><strong>`)
		p.text(message)
		p.raw(`</strong>`)
		if action != "" {
			p.raw(`<br>`)
			p.text(action)
		}
		if code != "" {
			p.raw(` <small>(Código: `)
			p.text(code)
			p.raw(`)</small>`)
		}
		p.raw(`</div>`)
	})
}

// ErrorPage is a full page around ErrorAlert with a way back.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Erro", component(func(ctx context.Context, p *page) {
		p.component(ctx, ErrorAlert(message, action, code))
		p.raw(`<a class="btn btn-secondary" href="/">Voltar</a>`)
	}))
}
