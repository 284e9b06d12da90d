package portfolio

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownName is used when a row has no stock name.
const UnknownName = "Unknown"

// Record is one normalized portfolio position.
type Record struct {
	Name          string
	Value         decimal.Decimal
	ChangePercent decimal.Decimal
}

// RawRow is one CSV line keyed by header name.
type RawRow map[string]string

// symbolReplacer drops currency and percent symbols and every kind of space
// spreadsheets put between digits.
var symbolReplacer = strings.NewReplacer(
	"€", "",
	"$", "",
	"£", "",
	"%", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	"'", "",
	"\u2212", "-",
)

// ParseNumber converts a spreadsheet cell to a decimal.
// It never fails: empty or non-numeric input yields zero.
//
//	ParseNumber("1,5")        == 1.5
//	ParseNumber("1.234,56 €") == 1234.56
//	ParseNumber("(12,50)")    == -12.5
//	ParseNumber("n/a")        == 0
func ParseNumber(s string) decimal.Decimal {
	d, _ := parseNumber(s)
	return d
}

// parseNumber reports whether s held a usable number.
func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	// Accounting format "(123,45)"
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = symbolReplacer.Replace(s)
	s = normalizeSeparators(s)
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// normalizeSeparators rewrites s to use '.' as the only decimal separator.
// Whichever of ',' and '.' appears last is the decimal separator; the other
// one is a thousands separator. A lone comma is always decimal.
func normalizeSeparators(s string) string {
	comma := strings.LastIndexByte(s, ',')
	if comma < 0 {
		return s
	}
	dot := strings.LastIndexByte(s, '.')
	if dot > comma {
		return strings.ReplaceAll(s, ",", "")
	}
	s = strings.ReplaceAll(s, ".", "")
	return strings.Replace(s, ",", ".", 1)
}
