// Package tabular holds the in-memory table shape shared by every extractor:
// a header row plus string cells, with case-insensitive column lookup and CSV
// loading. Cells stay strings until an extractor interprets them, so "missing"
// and "zero" remain distinguishable.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Table is an immutable header-plus-rows view of one source export.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadCSV parses CSV input into a Table. The first record is the header row.
// Ragged rows are tolerated: short rows read as empty cells.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}
	return &Table{Headers: records[0], Rows: records[1:]}, nil
}

// Cell returns the trimmed cell at (row, col), or "" when the row is shorter
// than the header set.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	cells := t.Rows[row]
	if col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}

// IsEmpty reports whether the table carries no data rows.
func (t *Table) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// MissingFieldError reports that a required column could not be located,
// carrying both the names that were sought and the headers that were present.
type MissingFieldError struct {
	Wanted    []string
	Available []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required column; need one of %v, have %v", e.Wanted, e.Available)
}

// FindColumn locates a column by any of the candidate names: first an exact
// case-insensitive match, then a substring match over the lowered headers.
// Candidates are tried against every header before falling back to substring
// search, so an exact hit on a later candidate beats a substring hit on an
// earlier one.
func FindColumn(headers []string, candidates []string) (int, bool) {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, want := range candidates {
		w := strings.ToLower(strings.TrimSpace(want))
		for i, h := range lowered {
			if h == w {
				return i, true
			}
		}
	}
	for i, h := range lowered {
		for _, want := range candidates {
			if strings.Contains(h, strings.ToLower(strings.TrimSpace(want))) {
				return i, true
			}
		}
	}
	return -1, false
}

// RequireColumn is FindColumn for required fields: a miss is a
// *MissingFieldError naming the candidates and the available headers.
func RequireColumn(headers []string, candidates []string) (int, error) {
	if idx, ok := FindColumn(headers, candidates); ok {
		return idx, nil
	}
	return -1, &MissingFieldError{
		Wanted:    append([]string(nil), candidates...),
		Available: append([]string(nil), headers...),
	}
}

// ParseFloat parses a numeric cell, reporting false for empty or unparseable
// values so callers treat them as absent.
func ParseFloat(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Float boxes a value for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
