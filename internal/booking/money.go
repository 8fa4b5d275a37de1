package booking

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

// Money formats minor units the way en-US renders currency, e.g. 1000 USD
// is "$10.00" and 123456 USD is "$1,234.56".  Codes without a known symbol
// are written as a prefix: "CHF 10.00".
func Money(amountCents int64, currency string) string {
	currency = strings.ToUpper(currency)
	amount := decimal.New(amountCents, -2)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	body := groupThousands(whole) + "." + frac

	if sym, ok := currencySymbols[currency]; ok {
		return sign + sym + body
	}
	return sign + currency + " " + body
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
