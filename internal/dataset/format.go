package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the declared encoding of an uploaded payload. It is chosen by the
// caller; content is never sniffed to pick one.
type Format int

const (
	// FormatDelimited is comma-separated text (.csv).
	FormatDelimited Format = iota
	// FormatSpreadsheet is an Office Open XML workbook (.xlsx).
	FormatSpreadsheet
)

// String returns the short name used in forms and flags ("csv", "xlsx").
func (f Format) String() string {
	switch f {
	case FormatDelimited:
		return "csv"
	case FormatSpreadsheet:
		return "xlsx"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the file extension expected for f, including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat converts a declared type name to a Format. Case-insensitive;
// a leading dot is accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return FormatDelimited, nil
	case "xlsx":
		return FormatSpreadsheet, nil
	default:
		return 0, fmt.Errorf("unsupported file type %q (want csv or xlsx)", s)
	}
}

// ValidateExtension rejects file names whose extension does not match the
// declared format. Callers run it before Parse.
func ValidateExtension(filename string, f Format) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != f.Extension() {
		return fmt.Errorf("%w: please upload a valid %s file", ErrExtensionMismatch, strings.ToUpper(f.String()))
	}
	return nil
}
