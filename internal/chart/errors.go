package chart

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCategoricalAxis matches any *NoCategoricalAxisError.
var ErrNoCategoricalAxis = errors.New("no categorical column for the chart axis")

// NoCategoricalAxisError is returned by Build when no column can label the
// axis because every column is numeric.
type NoCategoricalAxisError struct {
	Headers []string
}

func (e *NoCategoricalAxisError) Error() string {
	return fmt.Sprintf("%s: all of %s are numeric; add a text column to label the chart",
		ErrNoCategoricalAxis, strings.Join(e.Headers, ", "))
}

func (e *NoCategoricalAxisError) Is(target error) bool {
	return target == ErrNoCategoricalAxis
}

// IneligibleChartKindError is returned when the requested kind is not legal
// for the current data.
type IneligibleChartKindError struct {
	Kind        Kind
	Allowed     []Kind
	HasNegative bool
}

func (e *IneligibleChartKindError) Error() string {
	if e.Kind.Proportional() && e.HasNegative {
		return fmt.Sprintf("%s chart cannot show negative values", e.Kind)
	}
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("%s chart is not available: the data has no rows", e.Kind)
	}
	names := make([]string, len(e.Allowed))
	for i, k := range e.Allowed {
		names[i] = string(k)
	}
	return fmt.Sprintf("%s chart is not available for this data (allowed: %s)",
		e.Kind, strings.Join(names, ", "))
}
