package chart

import (
	"slices"

	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// Eligibility is the set of chart kinds a dataset can be drawn as.
type Eligibility struct {
	Kinds       []Kind `json:"kinds"`
	HasNegative bool   `json:"hasNegative"`
}

// Resolve computes the legal chart kinds for ds given its column roles.
// Rules, first match wins:
//
//  1. no data rows: nothing is legal
//  2. more than two headers: bar, line, radar
//  3. exactly one categorical and one numeric header with no negative
//     values: bar, line, pie, doughnut
//  4. otherwise: bar, line
//
// Pie and doughnut are never legal when a numeric value is negative.
func Resolve(ds *dataset.Dataset, cols Columns) Eligibility {
	e := Eligibility{HasNegative: hasNegative(ds, cols)}

	switch {
	case ds.Len() == 0:
		e.Kinds = []Kind{}
	case ds.ColumnCount() > 2:
		e.Kinds = []Kind{Bar, Line, Radar}
	case isSinglePair(ds, cols) && !e.HasNegative:
		e.Kinds = []Kind{Bar, Line, Pie, Doughnut}
	default:
		e.Kinds = []Kind{Bar, Line}
	}

	if e.HasNegative {
		e.Kinds = slices.DeleteFunc(e.Kinds, Kind.Proportional)
	}
	return e
}

// Allows reports whether k may be rendered. The negative-value rule is
// checked again here so a hand-built or stale Eligibility cannot let a pie
// through.
func (e Eligibility) Allows(k Kind) bool {
	if k.Proportional() && e.HasNegative {
		return false
	}
	return slices.Contains(e.Kinds, k)
}

// Empty reports whether no chart kind is legal.
func (e Eligibility) Empty() bool {
	return len(e.Kinds) == 0
}

func isSinglePair(ds *dataset.Dataset, cols Columns) bool {
	return ds.ColumnCount() == 2 &&
		len(cols.Categorical()) == 1 &&
		len(cols.Numeric()) == 1
}

func hasNegative(ds *dataset.Dataset, cols Columns) bool {
	for _, h := range cols.Numeric() {
		for _, v := range ds.Column(h) {
			if f, ok := dataset.ParseNumber(v); ok && f < 0 {
				return true
			}
		}
	}
	return false
}
