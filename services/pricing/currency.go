package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// currencyPrinter renders en-US / USD amounts. Message printers are safe for
// concurrent use, so one shared instance is enough.
var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a money amount as a USD currency string with exactly
// two fraction digits ("$1,234.50"). The output is deterministic: formatting
// the same numeric value always yields the same string.
func FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return currencyPrinter.Sprintf("$%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
