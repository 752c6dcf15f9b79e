package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"

	"github.com/xuri/excelize/v2"
)

// ContextCheckInterval is how often (in records) Parse checks for cancellation.
var ContextCheckInterval = 100

// Parse reads a complete payload in the declared format and returns the
// Dataset. Nothing is returned until the whole payload has been read: callers
// never observe a partially built Dataset.
//
// Empty lines are skipped; rows of empty cells (",,") are kept and padded.
// The first remaining row is the header row; at least
// one data row must follow, otherwise a *ParseError is returned.
func Parse(ctx context.Context, r io.Reader, format Format) (*Dataset, error) {
	var (
		records [][]string
		err     error
	)

	switch format {
	case FormatDelimited:
		records, err = readDelimited(ctx, r)
	case FormatSpreadsheet:
		records, err = readSpreadsheet(ctx, r)
	default:
		return nil, &ParseError{Format: format, Reason: "unsupported format"}
	}
	if err != nil {
		return nil, err
	}

	return fromRecords(format, records)
}

// ParseBytes is Parse over an in-memory buffer.
func ParseBytes(ctx context.Context, data []byte, format Format) (*Dataset, error) {
	return Parse(ctx, bytes.NewReader(data), format)
}

// fromRecords splits records into header and data rows, skipping empty
// lines.
func fromRecords(format Format, records [][]string) (*Dataset, error) {
	var header []string
	data := make([][]string, 0, len(records))

	for _, rec := range records {
		if isEmptyLine(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		data = append(data, rec)
	}

	if header == nil {
		return nil, &ParseError{Format: format, Reason: ReasonNoHeader}
	}
	if len(data) == 0 {
		return nil, &ParseError{Format: format, Reason: ReasonNoDataRows}
	}

	return New(header, data), nil
}

// readDelimited reads all CSV records. Field counts may vary between
// records and bare quotes are tolerated; fitting rows to the header width
// happens in New.
func readDelimited(ctx context.Context, r io.Reader) ([][]string, error) {
	br := bufio.NewReader(NewTextReader(r))
	if looksBinary(br) {
		return nil, &ParseError{Format: FormatDelimited, Reason: ReasonUndecoded + " delimited text (binary content)"}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	var records [][]string
	for n := 0; ; n++ {
		if n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: FormatDelimited, Reason: ReasonUndecoded + " delimited text", Err: err}
		}
		records = append(records, rec)
	}

	return records, nil
}

// readSpreadsheet reads the rows of the first sheet using raw cell values,
// so numbers are not reformatted with the workbook's display styles.
func readSpreadsheet(ctx context.Context, r io.Reader) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Format: FormatSpreadsheet, Reason: ReasonUndecoded + " spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: FormatSpreadsheet, Reason: ReasonNoHeader}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Format: FormatSpreadsheet, Reason: ReasonUndecoded + " spreadsheet", Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
