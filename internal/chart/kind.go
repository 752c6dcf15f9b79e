// Package chart derives everything a renderer needs from a Dataset: the role
// of each column, the chart kinds the data can legally be drawn as, and the
// labelled numeric series for a selected kind.
//
// Nothing here is cached. Every function recomputes from the Dataset it is
// given, so a caller that swaps in a new Dataset only has to call Reconcile
// again.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a chart type.
type Kind string

const (
	Bar      Kind = "bar"
	Line     Kind = "line"
	Radar    Kind = "radar"
	Pie      Kind = "pie"
	Doughnut Kind = "doughnut"
)

// AllKinds lists every chart kind in display order.
var AllKinds = []Kind{Bar, Line, Radar, Pie, Doughnut}

// ErrUnknownKind is returned by ParseKind for names that are not chart kinds.
var ErrUnknownKind = errors.New("unknown chart kind")

// ParseKind converts a user-supplied name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return Bar, nil
	case "line":
		return Line, nil
	case "radar":
		return Radar, nil
	case "pie":
		return Pie, nil
	case "doughnut", "donut":
		return Doughnut, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Proportional reports whether the kind draws values as shares of a whole.
// Proportional kinds cannot represent negative values.
func (k Kind) Proportional() bool {
	return k == Pie || k == Doughnut
}

// Title returns a display name ("Bar", "Doughnut").
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}
