// Package portfolio turns a published portfolio spreadsheet into report pages.
//
// The flow is parse, summarize, render:
//
//	records, err := portfolio.NewParser(portfolio.DefaultColumns(), portfolio.MissingZero).Parse(text)
//	total := portfolio.Summarize(records)
//	pages := renderer.Render(records, total, "Depotübersicht", 0x2ECC71)
//
// # Lenient numbers
//
// Cells are read leniently. A comma decimal separator is accepted, currency
// and percent symbols are dropped, and anything that still does not parse
// becomes zero. A malformed cell never aborts a report; see [ParseNumber].
//
// # Pages
//
// Chat embeds carry at most [MaxFields] fields, so records are split into
// consecutive pages of that size in source order. Every page repeats the
// portfolio total.
package portfolio
