package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxFields is the number of records a single page may carry.
const MaxFields = 25

// Direction is the trend of a position's change.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// DirectionOf classifies change by its sign.
func DirectionOf(change decimal.Decimal) Direction {
	switch change.Sign() {
	case 1:
		return Up
	case -1:
		return Down
	default:
		return Flat
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// Emoji is the chat indicator for d.
func (d Direction) Emoji() string {
	switch d {
	case Up:
		return "📈"
	case Down:
		return "📉"
	default:
		return "➖"
	}
}

// Field is one rendered record line.
type Field struct {
	Name      string
	Value     string
	Change    string
	Direction Direction
}

// Line is the field body: value, indicator and change.
func (f Field) Line() string {
	return fmt.Sprintf("%s %s %s", f.Value, f.Direction.Emoji(), f.Change)
}

// Page is one deliverable chunk of a report.
type Page struct {
	Title       string
	Index       int // 1-based
	Count       int
	Total       decimal.Decimal
	TotalText   string
	Fields      []Field
	Color       int
	GeneratedAt time.Time
}

// Footer is the generation timestamp line.
func (p Page) Footer() string {
	return "Stand: " + p.GeneratedAt.Format("02.01.2006 15:04:05")
}

// Text renders p as plain text for terminals and logs.
func (p Page) Text() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString("\n")
	b.WriteString("Gesamtwert: ")
	b.WriteString(p.TotalText)
	b.WriteString("\n\n")
	for _, f := range p.Fields {
		fmt.Fprintf(&b, "%-24s %s\n", f.Name, f.Line())
	}
	b.WriteString("\n")
	b.WriteString(p.Footer())
	b.WriteString("\n")
	return b.String()
}

// Renderer splits records into pages.
type Renderer struct {
	format *Formatter
	now    func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithClock sets the time source for page timestamps.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a Renderer using f for numbers.
func NewRenderer(f *Formatter, opts ...RendererOption) *Renderer {
	r := &Renderer{format: f, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns ceil(len(records)/MaxFields) pages in source order. No
// records means no pages. All pages share one timestamp and the same total.
func (r *Renderer) Render(records []Record, total decimal.Decimal, title string, color int) []Page {
	if len(records) == 0 {
		return nil
	}

	count := (len(records) + MaxFields - 1) / MaxFields
	generated := r.now()
	totalText := r.format.Money(total)

	pages := make([]Page, 0, count)
	for i := 0; i < count; i++ {
		start := i * MaxFields
		end := min(start+MaxFields, len(records))

		fields := make([]Field, 0, end-start)
		for _, rec := range records[start:end] {
			fields = append(fields, Field{
				Name:      rec.Name,
				Value:     r.format.Money(rec.Value),
				Change:    r.format.Percent(rec.ChangePercent),
				Direction: DirectionOf(rec.ChangePercent),
			})
		}

		pageTitle := title
		if count > 1 {
			pageTitle = fmt.Sprintf("%s (%d/%d)", title, i+1, count)
		}

		pages = append(pages, Page{
			Title:       pageTitle,
			Index:       i + 1,
			Count:       count,
			Total:       total,
			TotalText:   totalText,
			Fields:      fields,
			Color:       color,
			GeneratedAt: generated,
		})
	}
	return pages
}
