package core

// normalize.go provides the per-cell normalizers used to build match keys,
// money amounts and phone numbers from loosely formatted export data.
//
// These functions never fail. Bad input degrades to a neutral value:
//   - NormalizeText: empty key
//   - ParseMoney: zero
//   - FormatPhone: whatever digits were present, unprefixed
//
// Column-level failures are reported separately (see schema.go).

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BrazilCountryCode is prepended to phone numbers that carry an area code
// but no country code.
const BrazilCountryCode = "55"

// asciiFold decomposes accented characters and drops everything outside
// ASCII, so "João" becomes "Joao" and "ß" disappears.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})))

// NormalizeText builds the join key for a free-text name or identifier.
// Case and accents are ignored; nothing else is.
func NormalizeText(v any) NormalizedKey {
	s := cellString(v)
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(asciiFold, s)
	if err != nil {
		folded = stripNonASCII(s)
	}
	return NormalizedKey(strings.TrimSpace(strings.ToUpper(folded)))
}

// ParseMoney converts a Brazilian-formatted currency value ("R$ 1.234,56")
// to an amount. Numeric input passes through unchanged.
//
// A numeric Cell is taken at its typed value. The loader types a column as
// numeric when every cell reads as a plain "."-decimal number, so a column
// holding only "1.500" and "2.000" yields 1.5 and 2, not 1500 and 2000.
// A single cell with "R$" or a comma keeps the whole column as text.
func ParseMoney(v any) MoneyAmount {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt32(n)
	case Cell:
		if n.IsNumber {
			return decimal.NewFromFloat(n.Number)
		}
		return parseMoneyText(n.Text)
	case string:
		return parseMoneyText(n)
	default:
		return decimal.Zero
	}
}

// parseMoneyText strips the currency symbol and spaces, drops the "."
// grouping separator and only then turns the "," decimal separator into ".".
// Swapping the last two steps corrupts values such as "1.234,56".
func parseMoneyText(s string) MoneyAmount {
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPhone keeps only the digits of v, strips leading zeros and adds the
// Brazilian country code when a number with area code lacks it.
// No plausibility check is made.
func FormatPhone(v any) PhoneNumber {
	s := cellString(v)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	if len(digits) >= 10 && !strings.HasPrefix(digits, BrazilCountryCode) {
		digits = BrazilCountryCode + digits
	}
	return PhoneNumber(digits)
}

// cellString renders a raw value the way it would appear in the export.
// Whole floats are written without a fractional part so that a numeric
// phone column yields the same digits as its text form.
func cellString(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case NormalizedKey:
		return string(n)
	case PhoneNumber:
		return string(n)
	case Cell:
		return n.String()
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case decimal.Decimal:
		return n.String()
	case interface{ String() string }:
		return n.String()
	default:
		return ""
	}
}

func stripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}
