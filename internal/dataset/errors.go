package dataset

import (
	"errors"
	"fmt"
)

// ErrExtensionMismatch is returned by ValidateExtension when a file name does
// not carry the extension of its declared format.
var ErrExtensionMismatch = errors.New("file extension does not match declared type")

// ParseError reports a payload that could not be turned into a Dataset:
// undecodable content, a missing header row, or no data rows.
type ParseError struct {
	Format Format
	Reason string
	Err    error // underlying decoder error, may be nil
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error (%s): %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error (%s): %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reasons reported in ParseError.Reason.
const (
	ReasonNoHeader   = "missing header row"
	ReasonNoDataRows = "no data rows after header"
	ReasonUndecoded  = "content is not valid"
)

// OutOfRangeError reports an edit targeting a row outside [0, Len).
type OutOfRangeError struct {
	Row int
	Len int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("row index out of range: %d not in [0, %d)", e.Row, e.Len)
}

// UnknownHeaderError reports a reference to a header the Dataset does not have.
type UnknownHeaderError struct {
	Header string
}

func (e *UnknownHeaderError) Error() string {
	return fmt.Sprintf("unknown header: %q", e.Header)
}
