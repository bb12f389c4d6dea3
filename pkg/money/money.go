package money

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// currencySymbols maps ISO 4217 codes to their display symbols. Codes not
// listed here are rendered as "<CODE> <amount>".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

// Format renders an amount as a display string, e.g. Format(1299.99, "USD")
// returns "$1,299.99". Non-finite amounts are rendered as zero rather than
// leaking "NaN" into the UI.
func Format(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	sym, ok := currencySymbols[currency]
	if !ok {
		if currency == "" {
			sym = "$"
		} else {
			sym = currency + " "
		}
	}

	return printer.Sprintf("%s%s%v", sign, sym, number.Decimal(amount, number.Scale(2)))
}

// FormatPercent renders a percentage as a display string, e.g.
// FormatPercent(25) returns "25%" and FormatPercent(12.5) returns "12.5%".
// Non-finite input renders as "0%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// LineTotal computes unit price times quantity with exact decimal arithmetic,
// rounded to cents.
func LineTotal(unitPrice float64, qty int) float64 {
	total := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty)))
	return round2(total)
}

// WithDiscount applies a percentage discount to a unit price, rounded to
// cents. Percentages outside [0, 100] are clamped.
func WithDiscount(unitPrice, percent float64) float64 {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	factor := decimal.NewFromInt(100).Sub(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100))
	return round2(decimal.NewFromFloat(unitPrice).Mul(factor))
}

// Sum adds amounts with exact decimal arithmetic, rounded to cents. This is
// the one place cart aggregates are computed so float accumulation error can
// never creep into totals.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return round2(total)
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
