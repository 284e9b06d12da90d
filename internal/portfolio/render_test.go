package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newTestRenderer() *Renderer {
	return NewRenderer(NewFormatter(language.German, "€"), WithClock(func() time.Time { return fixedNow }))
}

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Name:          fmt.Sprintf("S%03d", i),
			Value:         decimal.NewFromInt(int64(i + 1)),
			ChangePercent: decimal.NewFromInt(int64(i%3 - 1)),
		}
	}
	return records
}

func TestRender_PageCount(t *testing.T) {
	r := newTestRenderer()
	for _, n := range []int{0, 1, 24, 25, 26, 49, 50, 51, 75, 76} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			records := makeRecords(n)
			pages := r.Render(records, Summarize(records), "Depot", 0)

			require.Len(t, pages, (n+MaxFields-1)/MaxFields)

			fields := 0
			for i, p := range pages {
				assert.LessOrEqual(t, len(p.Fields), MaxFields)
				assert.Equal(t, i+1, p.Index)
				assert.Equal(t, len(pages), p.Count)
				for j, f := range p.Fields {
					assert.Equal(t, records[i*MaxFields+j].Name, f.Name)
				}
				fields += len(p.Fields)
			}
			assert.Equal(t, n, fields)
		})
	}
}

func TestRender_ThirtyRows(t *testing.T) {
	records := makeRecords(30)
	total := Summarize(records)
	pages := newTestRenderer().Render(records, total, "Depot", 0x2ECC71)

	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Fields, 25)
	assert.Len(t, pages[1].Fields, 5)
	assert.Equal(t, "Depot (1/2)", pages[0].Title)
	assert.Equal(t, "Depot (2/2)", pages[1].Title)
	assert.Equal(t, pages[0].TotalText, pages[1].TotalText)
	assert.True(t, pages[0].Total.Equal(pages[1].Total))
	assert.Equal(t, "465,00 €", pages[0].TotalText)
	assert.Equal(t, 0x2ECC71, pages[1].Color)
	assert.Equal(t, fixedNow, pages[1].GeneratedAt)
}

func TestRender_Scenario(t *testing.T) {
	records, err := NewParser(DefaultColumns(), MissingZero).Parse("Aktie,Wert,Veränderung\nAAA,100,5\nBBB,200,-3\n")
	require.NoError(t, err)

	pages := newTestRenderer().Render(records, Summarize(records), "Depot", 0)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, "Depot", p.Title)
	assert.Equal(t, "300,00 €", p.TotalText)
	require.Len(t, p.Fields, 2)

	assert.Equal(t, Field{Name: "AAA", Value: "100,00 €", Change: "+5,00 %", Direction: Up}, p.Fields[0])
	assert.Equal(t, Field{Name: "BBB", Value: "200,00 €", Change: "-3,00 %", Direction: Down}, p.Fields[1])
	assert.Equal(t, "Stand: 15.03.2024 09:30:00", p.Footer())
	assert.Contains(t, p.Text(), "Gesamtwert: 300,00 €")
}

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		name string
	}{
		{"5", Up, "up"},
		{"0.0001", Up, "up"},
		{"-3", Down, "down"},
		{"-0.0001", Down, "down"},
		{"0", Flat, "flat"},
		{"0.00", Flat, "flat"},
	}
	for _, tt := range tests {
		d := DirectionOf(dec(tt.in))
		assert.Equal(t, tt.want, d, "DirectionOf(%s)", tt.in)
		assert.Equal(t, tt.name, d.String())
		assert.NotEmpty(t, d.Emoji())
	}
}

func TestFormatter(t *testing.T) {
	de := NewFormatter(language.German, "€")
	assert.Equal(t, "1.234,50 €", de.Money(dec("1234.5")))
	assert.Equal(t, "0,00 €", de.Money(decimal.Zero))
	assert.Equal(t, "1.234.567,89 €", de.Money(dec("1234567.891")))
	assert.Equal(t, "+0,00 %", de.Percent(decimal.Zero))
	assert.Equal(t, "+12,35 %", de.Percent(dec("12.345")))
	assert.Equal(t, "-0,50 %", de.Percent(dec("-0.5")))
	assert.Equal(t, "-0,00 %", de.Percent(dec("-0.004")))
	assert.Equal(t, "+0,00 %", de.Percent(dec("0.004")))

	en := NewFormatter(language.English, "")
	assert.Equal(t, "1,234.50", en.Money(dec("1234.5")))
	assert.Equal(t, "+5.00 %", en.Percent(dec("5")))
}

func TestRender_SignMatchesDirection(t *testing.T) {
	records := []Record{{Name: "Tiny", Value: dec("10"), ChangePercent: dec("-0.004")}}
	r := NewRenderer(NewFormatter(language.German, "€"))

	pages := r.Render(records, Summarize(records), "Depot", 0)

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Fields, 1)
	assert.Equal(t, Down, pages[0].Fields[0].Direction)
	assert.Equal(t, "-0,00 %", pages[0].Fields[0].Change)
}
