package chart

import (
	"fmt"

	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// Snapshot is a consistent view of one dataset and everything derived from
// it. Snapshots are never modified; Edit and Select return new ones.
type Snapshot struct {
	Dataset     *dataset.Dataset
	Columns     Columns
	Eligibility Eligibility
	Spec        Spec

	// Series is nil when SeriesErr is set.
	Series    *SeriesSet
	SeriesErr error

	// FellBack is set when the requested kind was not legal and Spec.Kind
	// was reset to Bar.
	FellBack bool
}

// Reconcile classifies ds, resolves eligibility, fits spec to it and builds
// the series. A build failure is kept in SeriesErr; the snapshot itself is
// always usable.
func Reconcile(ds *dataset.Dataset, spec Spec) *Snapshot {
	cols := ClassifyAll(ds)
	elig := Resolve(ds, cols)
	fitted, fellBack := spec.fit(elig)

	snap := &Snapshot{
		Dataset:     ds,
		Columns:     cols,
		Eligibility: elig,
		Spec:        fitted,
		FellBack:    fellBack,
	}
	snap.Series, snap.SeriesErr = Build(ds, cols, fitted.Kind)
	return snap
}

// Edit changes one cell and re-derives everything. On error snap is
// returned unchanged together with the error.
func Edit(snap *Snapshot, row int, header, value string) (*Snapshot, error) {
	ds, err := dataset.ApplyEdit(snap.Dataset, row, header, value)
	if err != nil {
		return snap, fmt.Errorf("edit cell: %w", err)
	}
	return Reconcile(ds, snap.Spec), nil
}

// Select applies a new chart selection. Unlike Reconcile, an ineligible kind
// is rejected rather than replaced, and snap is returned unchanged.
func (s *Snapshot) Select(spec Spec) (*Snapshot, error) {
	if spec.ExportFormat == "" {
		spec.ExportFormat = s.Spec.ExportFormat
	}
	if spec.Kind == "" {
		spec.Kind = s.Spec.Kind
	}
	if !s.Eligibility.Allows(spec.Kind) {
		return s, &IneligibleChartKindError{
			Kind:        spec.Kind,
			Allowed:     s.Eligibility.Kinds,
			HasNegative: s.Eligibility.HasNegative,
		}
	}
	return Reconcile(s.Dataset, spec), nil
}
