package portfolio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ColumnMap maps logical fields to the header text used in the sheet.
type ColumnMap struct {
	Name   string
	Value  string
	Change string
}

// DefaultColumns returns the German headers the portfolio sheet ships with.
func DefaultColumns() ColumnMap {
	return ColumnMap{Name: "Aktie", Value: "Wert", Change: "Veränderung"}
}

// MissingPolicy decides what happens to rows whose value cell is empty or
// not a number.
type MissingPolicy int

const (
	// MissingZero keeps the row with a zero value.
	MissingZero MissingPolicy = iota
	// MissingSkip drops the row.
	MissingSkip
)

// ParseMissingPolicy parses "zero" or "skip".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return MissingZero, nil
	case "skip":
		return MissingSkip, nil
	default:
		return MissingZero, fmt.Errorf("unknown missing-field policy %q", s)
	}
}

func (p MissingPolicy) String() string {
	if p == MissingSkip {
		return "skip"
	}
	return "zero"
}

// Parser converts CSV text into records.
type Parser struct {
	columns ColumnMap
	policy  MissingPolicy
}

// NewParser creates a Parser for the given header names.
func NewParser(columns ColumnMap, policy MissingPolicy) *Parser {
	return &Parser{columns: columns, policy: policy}
}

// Parse reads text as CSV with a header line and returns one record per
// data row, in source order. Cell problems never fail the parse; only CSV
// that cannot be tokenized (for example an unterminated quote) does.
func (p *Parser) Parse(text string) ([]Record, error) {
	return p.ParseReader(strings.NewReader(text))
}

// ParseReader is Parse over an io.Reader.
func (p *Parser) ParseReader(r io.Reader) ([]Record, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := p.record(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// record normalizes one row. ok is false when the policy drops the row.
func (p *Parser) record(row RawRow) (Record, bool) {
	nameCell, _ := row.Lookup(p.columns.Name)
	name := strings.TrimSpace(nameCell)
	if name == "" {
		name = UnknownName
	}

	valueCell, _ := row.Lookup(p.columns.Value)
	value, valid := parseNumber(valueCell)
	if !valid && p.policy == MissingSkip {
		return Record{}, false
	}

	return Record{
		Name:          name,
		Value:         value,
		ChangePercent: p.change(row),
	}, true
}

func (p *Parser) change(row RawRow) decimal.Decimal {
	cell, _ := row.Lookup(p.columns.Change)
	return ParseNumber(cell)
}

// ReadRows decodes CSV with a header line into RawRows keyed by the
// configured header text. Short rows get "" for their missing trailing
// cells; extra cells without a header are ignored. Blank lines are skipped.
// A header line with semicolons and no commas switches the delimiter to ';'
// as spreadsheet exports in comma-decimal locales do. Stray quotes are kept
// as literal text, so the only errors are read failures.
func ReadRows(r io.Reader) ([]RawRow, error) {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = cleanHeader(header)

	var rows []RawRow
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		row := make(RawRow, len(header))
		for i, key := range header {
			if i < len(line) {
				row[key] = line[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffDelimiter looks at the first line without consuming it.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(sniffBytes)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';'
	}
	return ','
}

const sniffBytes = 4096

// cleanHeader trims header cells and strips a leading byte order mark that
// survived decoding.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// Lookup returns row's cell for a header, matching exactly first and then
// ignoring case.
func (r RawRow) Lookup(header string) (string, bool) {
	if v, ok := r[header]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, header) {
			return v, true
		}
	}
	return "", false
}
