package chart

import (
	"errors"
	"fmt"
	"strings"
)

// ExportFormat is the preferred save format for a session.
type ExportFormat string

const (
	ExportPNG  ExportFormat = "png"
	ExportPDF  ExportFormat = "pdf"
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ErrUnknownExportFormat is returned by ParseExportFormat.
var ErrUnknownExportFormat = errors.New("unknown export format")

// ParseExportFormat converts a user-supplied name into an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportPNG, ExportPDF, ExportCSV, ExportXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExportFormat, s)
}

// IsImage reports whether the format exports the chart rather than the data.
func (f ExportFormat) IsImage() bool {
	return f == ExportPNG || f == ExportPDF
}

// Spec is the user's current chart selection. It is per-session state and
// is passed explicitly to Reconcile.
type Spec struct {
	Kind         Kind         `json:"kind"`
	ExportFormat ExportFormat `json:"exportFormat"`
}

// DefaultSpec is the selection for a freshly loaded file.
func DefaultSpec() Spec {
	return Spec{Kind: Bar, ExportFormat: ExportPNG}
}

// fit returns s with its kind replaced by Bar when e does not allow it.
func (s Spec) fit(e Eligibility) (Spec, bool) {
	if s.ExportFormat == "" {
		s.ExportFormat = ExportPNG
	}
	if e.Allows(s.Kind) {
		return s, false
	}
	s.Kind = Bar
	return s, true
}
