package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex accepts plain integers, decimals and scientific notation.
// strconv.ParseFloat alone would also take "Inf", "NaN", hex floats and
// underscores, none of which a spreadsheet user means as a number.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber interprets a raw cell as a finite number.
// Surrounding whitespace is ignored; empty cells are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// NumberOrZero returns the parsed value of s, or 0 when s is not a number.
func NumberOrZero(s string) float64 {
	f, _ := ParseNumber(s)
	return f
}

// isEmptyLine reports whether rec came from an empty line: no fields, or a
// single empty field. Rows of empty cells such as ",," are not empty lines.
func isEmptyLine(rec []string) bool {
	return len(rec) == 0 || (len(rec) == 1 && rec[0] == "")
}
