// Package messaging turns cashback balances into pre-filled WhatsApp
// invitation links. Nothing is sent: the operator opens each link.
package messaging

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/core"
)

// DefaultTemplate is the invitation text. Placeholders:
//
//	{nome}      customer display name
//	{gasto}     total spent, "1234,50"
//	{cash}      cashback, "123,45"
//	{unidades}  reward units, "2,5"; empty when no unit price is configured
const DefaultTemplate = "Olá {nome}, identificamos que você comprou R$ {gasto} conosco recentemente. " +
	"Por isso, você ganhou R$ {cash} de cashback!"

// WhatsAppBaseURL is the click-to-chat endpoint.
const WhatsAppBaseURL = "https://wa.me/"

// Invite is the rendered invitation for one balance.
type Invite struct {
	Name       string           `json:"name"`
	Phone      core.PhoneNumber `json:"phone"`
	TotalSpent string           `json:"totalSpent"`
	Cashback   string           `json:"cashback"`
	Message    string           `json:"message"`
	Link       string           `json:"link,omitempty"`
	Usable     bool             `json:"usable"`
}

// FormatAmount renders d with two decimals and a comma separator.
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func formatUnits(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return strings.Replace(d.String(), ".", ",", 1)
}

// Render fills the placeholders of tmpl for b. Substitution is a single
// pass, so a name containing "{cash}" is not expanded again. An empty
// template uses DefaultTemplate.
func Render(tmpl string, b core.Balance) string {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	r := strings.NewReplacer(
		"{nome}", strings.TrimSpace(b.DisplayName),
		"{gasto}", FormatAmount(b.TotalSpent),
		"{cash}", FormatAmount(b.Cashback),
		"{unidades}", formatUnits(b.RewardUnits),
	)
	return r.Replace(tmpl)
}

// Escape percent-encodes text for the link query. Everything except
// letters, digits and "_.-~/" is encoded and spaces become "%20".
func Escape(text string) string {
	s := url.QueryEscape(text)
	s = strings.ReplaceAll(s, "+", "%20")
	return strings.ReplaceAll(s, "%2F", "/")
}

// Link builds the click-to-chat URL for phone with text pre-filled.
func Link(phone core.PhoneNumber, text string) string {
	return WhatsAppBaseURL + string(phone) + "?text=" + Escape(text)
}

// Compose renders an invitation for every balance, in order. Balances
// whose phone is not usable get no link and Usable false so the caller
// can report them.
func Compose(balances []core.Balance, tmpl string) []Invite {
	invites := make([]Invite, 0, len(balances))
	for _, b := range balances {
		inv := Invite{
			Name:       strings.TrimSpace(b.DisplayName),
			Phone:      b.Phone,
			TotalSpent: FormatAmount(b.TotalSpent),
			Cashback:   FormatAmount(b.Cashback),
			Message:    Render(tmpl, b),
			Usable:     b.Phone.Usable(),
		}
		if inv.Usable {
			inv.Link = Link(b.Phone, inv.Message)
		}
		invites = append(invites, inv)
	}
	return invites
}

// Split separates usable invitations from the ones without a valid phone.
func Split(invites []Invite) (usable, unreachable []Invite) {
	for _, inv := range invites {
		if inv.Usable {
			usable = append(usable, inv)
		} else {
			unreachable = append(unreachable, inv)
		}
	}
	return usable, unreachable
}
