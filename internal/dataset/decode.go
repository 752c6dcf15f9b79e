package dataset

// decode.go prepares delimited text for the CSV reader.
//
// Spreadsheet exports from Windows tools commonly start with a UTF-8 BOM or
// are written as UTF-16. The decoder honors any of those BOMs and falls back
// to UTF-8, replacing invalid sequences with U+FFFD so a stray byte never
// aborts the parse.

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen is how many leading bytes are inspected for binary content.
const sniffLen = 512

// NewTextReader wraps r with BOM detection (UTF-8, UTF-16LE, UTF-16BE) and
// UTF-8 sanitization.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// looksBinary reports whether the head of a payload contains NUL bytes that
// no text encoding would produce after decoding. Callers check the decoded
// stream, so UTF-16 input has already been converted.
func looksBinary(br *bufio.Reader) bool {
	head, _ := br.Peek(sniffLen)
	return bytes.IndexByte(head, 0) >= 0
}
