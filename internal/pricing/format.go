package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders prices for display. Rounding to two decimals happens
// here and nowhere else.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter for a BCP 47 locale tag. Unknown tags fall
// back to Brazilian Portuguese.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

// Format returns v with two decimals and locale separators.
func (f Formatter) Format(v float64) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.BrazilianPortuguese)
	}
	return p.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
