package portfolio

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts and percentages for one locale.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter returns a Formatter for tag that appends currency to amounts.
func NewFormatter(tag language.Tag, currency string) *Formatter {
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: currency,
	}
}

// Money formats d with two decimals, grouping and the currency suffix,
// e.g. "1.234,50 €" for German.
func (f *Formatter) Money(d decimal.Decimal) string {
	s := f.fixed(d)
	if f.currency == "" {
		return s
	}
	return s + " " + f.currency
}

// Percent formats d with two decimals and an explicit sign, e.g. "+5,00 %".
// The sign follows d before rounding, so -0.004 renders as "-0,00 %".
func (f *Formatter) Percent(d decimal.Decimal) string {
	s := f.fixed(d)
	switch {
	case !d.IsNegative():
		s = "+" + s
	case d.Round(2).IsZero():
		s = "-" + s
	}
	return s + " %"
}

func (f *Formatter) fixed(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
