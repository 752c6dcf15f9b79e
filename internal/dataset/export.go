package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// exportSheet is the sheet name used for spreadsheet exports.
const exportSheet = "Sheet1"

// WriteCSV writes the header row and every data row verbatim.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range d.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with the header in row 1 and the
// data rows below it. Cells are written as text so values round-trip
// exactly as they appear in the grid.
func WriteXLSX(w io.Writer, d *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheetRow(f, 1, d.headers); err != nil {
		return err
	}
	for i, row := range d.rows {
		if err := writeSheetRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", rowNum, err)
	}
	return nil
}
