package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/messaging"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/session"
)

// SchemeOption is one entry of the scheme picker.
type SchemeOption struct {
	Name     string
	Label    string
	Selected bool
}

// UploadPage is the landing page with the two upload fields.
func UploadPage(schemes []SchemeOption) templ.Component {
	return Layout("Sistema de Cashback", component(func(ctx context.Context, p *page) {
		p.raw(`<form class="card" method="post" action="/reconcile" enctype="multipart/form-data">`)
		p.raw(`<p><label>📂 Relatórios de Vendas (vários meses)<br>`)
		p.raw(`<input type="file" name="sales" accept=".csv,.txt" multiple required></label></p>`)
		p.raw(`<p><label>👥 Relatório de Cadastro<br>`)
		p.raw(`<input type="file" name="registry" accept=".csv,.txt" required></label></p>`)
		if len(schemes) > 1 {
			p.raw(`<p><label>Esquema de cashback<br><select name="scheme">`)
			for _, s := range schemes {
				p.rawf(`<option value="%s"`, templ.EscapeString(s.Name))
				if s.Selected {
					p.raw(` selected`)
				}
				p.raw(`>`)
				p.text(s.Label)
				p.raw(`</option>`)
			}
			p.raw(`</select></label></p>`)
		}
		p.raw(`<p><label>Ordenar por <select name="sort">`)
		p.raw(`<option value="" selected>Padrão do esquema</option>`)
		p.raw(`<option value="cashback">Cashback</option>`)
		p.raw(`<option value="total_spent">Total gasto</option>`)
		p.raw(`<option value="name">Nome</option>`)
		p.raw(`</select></label></p>`)
		p.raw(`<button class="btn" type="submit">Processar</button>`)
		p.raw(`</form>`)
		p.raw(`<p>Aguardando upload dos arquivos CSV...</p>`)
	}))
}

// ResultsView is everything the results page shows.
type ResultsView struct {
	Result  *core.Result
	Rows    []session.Row
	Options core.Options
}

// ResultsPage renders the ranked balances with the selection controls and
// the PIN form that generates the links.
func ResultsPage(v ResultsView) templ.Component {
	return Layout("Resultado do Cashback", component(func(ctx context.Context, p *page) {
		selected := 0
		balances := make([]core.Balance, len(v.Rows))
		for i, r := range v.Rows {
			balances[i] = r.Balance
			if r.Selected {
				selected++
			}
		}

		if v.Result != nil {
			st := v.Result.Stats
			p.raw(`<div class="alert alert-ok">✅ Arquivos processados com sucesso!</div>`)
			p.raw(`<div class="card stats">`)
			p.rawf(`<span>Arquivos de vendas: <b>%d</b></span>`, st.SalesFiles)
			p.rawf(`<span>Vendas: <b>%d</b></span>`, st.SalesRows)
			p.rawf(`<span>Duplicadas removidas: <b>%d</b></span>`, st.DuplicatesRemoved)
			p.rawf(`<span>Cadastros: <b>%d</b></span>`, st.RegistryRows)
			p.rawf(`<span>Clientes com cashback: <b>%d</b></span>`, st.Customers)
			p.rawf(`<span>Total de cashback: <b>R$ %s</b></span>`, messaging.FormatAmount(core.TotalCashback(balances)))
			p.raw(`</div>`)
		}

		if len(v.Rows) == 0 {
			p.raw(`<div class="alert alert-warn">Nenhum cliente com cashback encontrado.</div>`)
			resetForm(p)
			return
		}

		podium(p, balances)

		p.raw(`<div class="card"><h2>📋 Selecione quem vai receber</h2>`)
		p.raw(`<form method="post" action="/selection/all" style="display:inline"><button class="btn btn-secondary">✅ Marcar Todos</button></form>`)
		p.raw(`<form method="post" action="/selection/none" style="display:inline"><button class="btn btn-secondary">⬜ Desmarcar Todos</button></form>`)

		showUnits := v.Options.UnitPrice.IsPositive()
		maxCashback := maxOf(balances)

		p.raw(`<table><thead><tr><th>Enviar?</th><th>Cliente</th><th>Telefone</th><th>Total Gasto</th><th>Ranking de Cashback</th><th>Compras</th>`)
		if showUnits {
			p.raw(`<th>Unidades</th>`)
		}
		p.raw(`</tr></thead><tbody>`)
		for i, r := range v.Rows {
			p.raw(`<tr><td>`)
			p.rawf(`<form method="post" action="/selection/%d/toggle"><button class="btn btn-secondary" title="alternar">%s</button></form>`,
				i, checkbox(r.Selected))
			p.raw(`</td><td>`)
			p.text(r.DisplayName)
			p.raw(`</td><td>`)
			if r.Phone == "" {
				p.raw(`<em>sem telefone</em>`)
			} else {
				p.text(string(r.Phone))
			}
			p.rawf(`</td><td>R$ %s</td>`, messaging.FormatAmount(r.TotalSpent))
			p.rawf(`<td>R$ %s<div class="bar"><span style="width:%s%%"></span></div></td>`,
				messaging.FormatAmount(r.Cashback), percent(r.Cashback, maxCashback))
			p.rawf(`<td>%d</td>`, r.Purchases)
			if showUnits {
				p.rawf(`<td>%s</td>`, templ.EscapeString(r.RewardUnits.String()))
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table></div>`)

		p.raw(`<div class="card"><h2>🚀 Disparo de Mensagens</h2>`)
		p.raw(`<form method="post" action="/links">`)
		p.raw(`<label>Digite o PIN: <input type="password" name="pin" placeholder="****" autocomplete="off" required></label> `)
		p.rawf(`<button class="btn" type="submit">GERAR LINKS DE ENVIO (%d)</button>`, selected)
		p.raw(`</form></div>`)
		resetForm(p)
	}))
}

// LinksPage lists one button per reachable customer and a warning for each
// customer without a usable phone.
func LinksPage(invites []messaging.Invite) templ.Component {
	return Layout("Links de Envio", component(func(ctx context.Context, p *page) {
		usable, unreachable := messaging.Split(invites)
		p.rawf(`<div class="alert alert-ok">Acesso permitido! Preparando %d envios...</div>`, len(invites))

		p.raw(`<div class="card">`)
		for _, inv := range unreachable {
			p.raw(`<div class="alert alert-warn">🚫 `)
			p.text(inv.Name)
			p.raw(`: Telefone não cadastrado ou inválido (Cashback: R$ `)
			p.text(inv.Cashback)
			p.raw(`)</div>`)
		}
		for _, inv := range usable {
			p.rawf(`<p><a class="btn" target="_blank" rel="noopener noreferrer" href="%s">📲 Enviar para `,
				templ.EscapeString(inv.Link))
			p.text(inv.Name)
			p.raw(` (R$ `)
			p.text(inv.Cashback)
			p.raw(`)</a></p>`)
		}
		p.raw(`</div>`)
		p.raw(`<a class="btn btn-secondary" href="/results">Voltar à lista</a>`)
	}))
}

// podiumSize is how many customers the podium shows.
const podiumSize = 3

var medals = [podiumSize]string{"🥇", "🥈", "🥉"}

// podium shows the customers with the largest cashback, whatever the
// table's sort order.
func podium(p *page, balances []core.Balance) {
	top := make([]core.Balance, len(balances))
	copy(top, balances)
	core.SortBalances(top, core.DefaultSort)
	if len(top) > podiumSize {
		top = top[:podiumSize]
	}

	p.raw(`<div class="card"><h2>🏆 Melhores Clientes do Período</h2><div class="podium">`)
	for i, b := range top {
		p.rawf(`<div>%s `, medals[i])
		p.text(b.DisplayName)
		p.rawf(`<b>R$ %s</b>Cashback: R$ %s</div>`,
			messaging.FormatAmount(b.TotalSpent), messaging.FormatAmount(b.Cashback))
	}
	p.raw(`</div></div>`)
}

// resetForm drops the session's result and returns to the upload page.
func resetForm(p *page) {
	p.raw(`<form method="post" action="/reset"><button class="btn btn-secondary" type="submit">Novo processamento</button></form>`)
}

func checkbox(selected bool) string {
	if selected {
		return "☑"
	}
	return "☐"
}

func maxOf(b []core.Balance) decimal.Decimal {
	m := decimal.Zero
	for _, x := range b {
		if x.Cashback.GreaterThan(m) {
			m = x.Cashback
		}
	}
	return m
}

// percent returns v as a whole percentage of top, for the ranking bar.
func percent(v, top decimal.Decimal) string {
	if !top.IsPositive() {
		return "0"
	}
	return strconv.FormatInt(v.Mul(decimal.NewFromInt(100)).Div(top).Round(0).IntPart(), 10)
}
