// Package dataset holds the tabular representation of an uploaded file.
//
// A Dataset is an ordered list of unique header names plus an ordered list of
// rows, where every row carries exactly one raw text value per header. Values
// keep their original textual form; interpretation (numeric vs categorical)
// belongs to the chart package.
//
// Datasets are immutable once built. ApplyEdit returns a new Dataset that
// shares every untouched row with its parent, so a Dataset can be handed to
// several goroutines without copying or locking.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Row maps each header to the raw cell text for one data row.
type Row map[string]string

// Dataset is an immutable table of raw cell values.
type Dataset struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

// New builds a Dataset from a header row and data records.
// Header names are made unique (see NormalizeHeaders). Records shorter than
// the header are padded with empty values; longer records are truncated.
func New(headers []string, records [][]string) *Dataset {
	names := NormalizeHeaders(headers)

	index := make(map[string]int, len(names))
	for i, h := range names {
		index[h] = i
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = fitRecord(rec, len(names))
	}

	return &Dataset{
		headers: names,
		index:   index,
		rows:    rows,
	}
}

// fitRecord returns a copy of rec with exactly n cells.
func fitRecord(rec []string, n int) []string {
	row := make([]string, n)
	copy(row, rec)
	return row
}

// NormalizeHeaders trims header names, names blank headers "Column N"
// (1-indexed position) and disambiguates repeats as "Name (2)", "Name (3)".
func NormalizeHeaders(headers []string) []string {
	names := make([]string, len(headers))
	used := make(map[string]bool, len(headers))

	for i, h := range headers {
		base := strings.TrimSpace(h)
		if base == "" {
			base = "Column " + strconv.Itoa(i+1)
		}

		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", base, n)
		}
		used[name] = true
		names[i] = name
	}

	return names
}

// Headers returns a copy of the header names in file order.
func (d *Dataset) Headers() []string {
	out := make([]string, len(d.headers))
	copy(out, d.headers)
	return out
}

// ColumnCount returns the number of headers.
func (d *Dataset) ColumnCount() int {
	return len(d.headers)
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// HasHeader reports whether header is a known column name.
func (d *Dataset) HasHeader(header string) bool {
	_, ok := d.index[header]
	return ok
}

// Value returns the raw value at (row, header).
func (d *Dataset) Value(row int, header string) (string, error) {
	col, ok := d.index[header]
	if !ok {
		return "", &UnknownHeaderError{Header: header}
	}
	if row < 0 || row >= len(d.rows) {
		return "", &OutOfRangeError{Row: row, Len: len(d.rows)}
	}
	return d.rows[row][col], nil
}

// Column returns a copy of the values for header in row order.
// Returns nil if the header is unknown.
func (d *Dataset) Column(header string) []string {
	col, ok := d.index[header]
	if !ok {
		return nil
	}
	out := make([]string, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[col]
	}
	return out
}

// Record returns a copy of row i as a slice ordered like Headers.
func (d *Dataset) Record(i int) []string {
	out := make([]string, len(d.headers))
	copy(out, d.rows[i])
	return out
}

// Row returns row i as a header-keyed map.
func (d *Dataset) Row(i int) Row {
	r := make(Row, len(d.headers))
	for c, h := range d.headers {
		r[h] = d.rows[i][c]
	}
	return r
}

// Rows returns every row as header-keyed maps.
func (d *Dataset) Rows() []Row {
	out := make([]Row, len(d.rows))
	for i := range d.rows {
		out[i] = d.Row(i)
	}
	return out
}

// Records returns a deep copy of all rows ordered like Headers.
func (d *Dataset) Records() [][]string {
	out := make([][]string, len(d.rows))
	for i := range d.rows {
		out[i] = d.Record(i)
	}
	return out
}
