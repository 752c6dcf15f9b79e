package dataset

// ApplyEdit returns a copy of d with the cell at (row, header) set to value.
// Only the edited row is copied; every other row is shared with d, which is
// never modified. On error d is returned unchanged alongside the error.
func ApplyEdit(d *Dataset, row int, header, value string) (*Dataset, error) {
	col, ok := d.index[header]
	if !ok {
		return d, &UnknownHeaderError{Header: header}
	}
	if row < 0 || row >= len(d.rows) {
		return d, &OutOfRangeError{Row: row, Len: len(d.rows)}
	}

	rows := make([][]string, len(d.rows))
	copy(rows, d.rows)

	edited := make([]string, len(d.rows[row]))
	copy(edited, d.rows[row])
	edited[col] = value
	rows[row] = edited

	return &Dataset{
		headers: d.headers,
		index:   d.index,
		rows:    rows,
	}, nil
}
