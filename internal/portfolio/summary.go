package portfolio

import "github.com/shopspring/decimal"

// Summarize returns the total value of records. An empty slice sums to zero.
func Summarize(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Value)
	}
	return total
}
