package portfolio

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// ============================================================================
// Number Parsing Benchmarks
// ============================================================================

// BenchmarkParseNumber covers the cell shapes spreadsheet exports produce.
// Every value and change cell goes through it.
func BenchmarkParseNumber(b *testing.B) {
	testCases := []string{
		"123",
		"-456,78",
		"1.234,56 €",
		"(123.45)",     // Accounting negative
		"1,234,567.89", // Thousands separators
		"  5,5 %  ",    // Percent with padding
		"",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

// BenchmarkParseNumber_Simple benchmarks the most common case.
func BenchmarkParseNumber_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ParseNumber("12345")
	}
}

// ============================================================================
// Parse and Render Benchmarks
// ============================================================================

func generateSheet(rows int) string {
	var sb strings.Builder
	sb.WriteString("Aktie,Wert,Veränderung\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "Stock %d,\"%d,%02d\",%d\n", i, 1000+i, i%100, i%7-3)
	}
	return sb.String()
}

// BenchmarkParse benchmarks a sheet of typical size.
func BenchmarkParse(b *testing.B) {
	text := generateSheet(50)
	p := NewParser(DefaultColumns(), MissingZero)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(text); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParse_Large benchmarks a sheet far larger than a real depot.
func BenchmarkParse_Large(b *testing.B) {
	text := generateSheet(10000)
	p := NewParser(DefaultColumns(), MissingZero)

	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(text); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRender benchmarks formatting and pagination.
func BenchmarkRender(b *testing.B) {
	records, err := NewParser(DefaultColumns(), MissingZero).Parse(generateSheet(100))
	if err != nil {
		b.Fatal(err)
	}
	total := Summarize(records)
	r := NewRenderer(NewFormatter(language.German, "€"), WithClock(func() time.Time { return time.Time{} }))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Render(records, total, "Depot", 0)
	}
}

// BenchmarkFormatterMoney benchmarks locale money formatting.
func BenchmarkFormatterMoney(b *testing.B) {
	f := NewFormatter(language.German, "€")
	d := decimal.RequireFromString("1234567.891")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Money(d)
	}
}

// BenchmarkParseNumberParallel checks that parsing has no shared state.
func BenchmarkParseNumberParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ParseNumber("1.234,56 €")
		}
	})
}
