package dataset

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func TestParse_Delimited(t *testing.T) {
	input := "Name,Score\nA,10\nB,20\nC,-5\n"

	ds, err := Parse(context.Background(), strings.NewReader(input), FormatDelimited)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score"}, ds.Headers())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"10", "20", "-5"}, ds.Column("Score"))
}

func TestParse_DelimitedEdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeaders []string
		wantRecords [][]string
	}{
		{
			name:        "leading blank lines skipped",
			input:       "\n\nName,Score\nA,1\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "1"}},
		},
		{
			name:        "empty lines skipped",
			input:       "Name,Score\nA,1\n\n\nB,2\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "1"}, {"B", "2"}},
		},
		{
			name:        "rows of empty cells kept",
			input:       "Name,Score\nA,10\n,\nB,20\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "10"}, {"", ""}, {"B", "20"}},
		},
		{
			name:        "single comma row padded",
			input:       "Name,Q1,Q2\nA,1,2\n,\n",
			wantHeaders: []string{"Name", "Q1", "Q2"},
			wantRecords: [][]string{{"A", "1", "2"}, {"", "", ""}},
		},
		{
			name:        "whitespace line is a row",
			input:       "Name,Score\nA,1\n \n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "1"}, {" ", ""}},
		},
		{
			name:        "short rows padded",
			input:       "Name,Q1,Q2\nA,1\n",
			wantHeaders: []string{"Name", "Q1", "Q2"},
			wantRecords: [][]string{{"A", "1", ""}},
		},
		{
			name:        "long rows truncated",
			input:       "Name,Q1\nA,1,2,3\n",
			wantHeaders: []string{"Name", "Q1"},
			wantRecords: [][]string{{"A", "1"}},
		},
		{
			name:        "quoted fields keep commas",
			input:       "Name,Score\n\"Smith, J\",3\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"Smith, J", "3"}},
		},
		{
			name:        "CRLF line endings",
			input:       "Name,Score\r\nA,1\r\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "1"}},
		},
		{
			name:        "UTF-8 BOM stripped from first header",
			input:       "\ufeffName,Score\nA,1\n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", "1"}},
		},
		{
			name:        "raw values kept verbatim",
			input:       "Name,Score\nA, 1.50 \n",
			wantHeaders: []string{"Name", "Score"},
			wantRecords: [][]string{{"A", " 1.50 "}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseBytes(context.Background(), []byte(tt.input), FormatDelimited)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeaders, ds.Headers())
			assert.Equal(t, tt.wantRecords, ds.Records())
		})
	}
}

func TestParse_DelimitedUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("Name,Score\nA,1\n"))
	require.NoError(t, err)

	ds, err := ParseBytes(context.Background(), data, FormatDelimited)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Score"}, ds.Headers())
	assert.Equal(t, [][]string{{"A", "1"}}, ds.Records())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		format Format
		reason string
	}{
		{
			name:   "empty file",
			input:  nil,
			format: FormatDelimited,
			reason: ReasonNoHeader,
		},
		{
			name:   "header only",
			input:  []byte("Name,Score\n"),
			format: FormatDelimited,
			reason: ReasonNoDataRows,
		},
		{
			name:   "header followed by empty lines",
			input:  []byte("Name,Score\n\n\n"),
			format: FormatDelimited,
			reason: ReasonNoDataRows,
		},
		{
			name:   "binary declared as csv",
			input:  []byte("PK\x03\x04\x00\x00binary"),
			format: FormatDelimited,
			reason: ReasonUndecoded,
		},
		{
			name:   "text declared as xlsx",
			input:  []byte("Name,Score\nA,1\n"),
			format: FormatSpreadsheet,
			reason: ReasonUndecoded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseBytes(context.Background(), tt.input, tt.format)
			assert.Nil(t, ds)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.format, pe.Format)
			assert.Contains(t, pe.Reason, tt.reason)
		})
	}
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseBytes(ctx, []byte("Name,Score\nA,1\n"), FormatDelimited)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParse_Spreadsheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Name", "Score", "Note"},
		{"A", 10, "x"},
		{},
		{"B", 20.5},
	})

	ds, err := ParseBytes(context.Background(), data, FormatSpreadsheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Score", "Note"}, ds.Headers())
	assert.Equal(t, [][]string{
		{"A", "10", "x"},
		{"B", "20.5", ""},
	}, ds.Records())
}

func TestParse_SpreadsheetHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{{"Name", "Score"}})

	_, err := ParseBytes(context.Background(), data, FormatSpreadsheet)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ReasonNoDataRows, pe.Reason)
}

func TestParse_SpreadsheetFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Score"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"A", 1}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]interface{}{"X", "Y", "Z"}))
	require.NoError(t, f.SetSheetRow("Other", "A2", &[]interface{}{"1", "2", "3"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	ds, err := ParseBytes(context.Background(), buf.Bytes(), FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Score"}, ds.Headers())
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		file    string
		format  Format
		wantErr bool
	}{
		{"data.csv", FormatDelimited, false},
		{"DATA.CSV", FormatDelimited, false},
		{"data.xlsx", FormatSpreadsheet, false},
		{"data.xlsx", FormatDelimited, true},
		{"data.csv", FormatSpreadsheet, true},
		{"data", FormatDelimited, true},
		{"data.xls", FormatSpreadsheet, true},
	}

	for _, tt := range tests {
		t.Run(tt.file+"/"+tt.format.String(), func(t *testing.T) {
			err := ValidateExtension(tt.file, tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrExtensionMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatDelimited, f)

	f, err = ParseFormat(".xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheet, f)

	_, err = ParseFormat("json")
	assert.Error(t, err)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
