package chart

import (
	"strings"

	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
)

// LabelSeparator joins categorical values into one axis label.
const LabelSeparator = " - "

// Series is one named row-aligned numeric array.
type Series struct {
	Name        string    `json:"name"`
	Values      []float64 `json:"values"`
	PointColors []string  `json:"pointColors,omitempty"`
	Color       string    `json:"color,omitempty"`
}

// SeriesSet is everything a renderer needs to draw one chart.
type SeriesSet struct {
	Kind           Kind     `json:"kind"`
	Labels         []string `json:"labels"`
	Series         []Series `json:"series"`
	Stacked        bool     `json:"stacked"`
	ShowAxisTitles bool     `json:"showAxisTitles"`
	XAxisTitle     string   `json:"xAxisTitle,omitempty"`
	YAxisTitle     string   `json:"yAxisTitle,omitempty"`
}

// Build produces the render payload for kind.
//
// It fails with *IneligibleChartKindError when kind is not legal for ds and
// with *NoCategoricalAxisError when no column can label the axis. Every
// series has exactly ds.Len() values; cells that are not numbers become 0.
func Build(ds *dataset.Dataset, cols Columns, kind Kind) (*SeriesSet, error) {
	elig := Resolve(ds, cols)
	if !elig.Allows(kind) {
		return nil, &IneligibleChartKindError{
			Kind:        kind,
			Allowed:     elig.Kinds,
			HasNegative: elig.HasNegative,
		}
	}

	categorical := cols.Categorical()
	if len(categorical) == 0 {
		return nil, &NoCategoricalAxisError{Headers: ds.Headers()}
	}
	numeric := cols.Numeric()

	set := &SeriesSet{
		Kind:           kind,
		Labels:         buildLabels(ds, categorical),
		Series:         make([]Series, 0, len(numeric)),
		Stacked:        kind == Bar && len(numeric) > 1,
		ShowAxisTitles: !kind.Proportional(),
	}
	if set.ShowAxisTitles {
		set.XAxisTitle = strings.Join(categorical, LabelSeparator)
		set.YAxisTitle = strings.Join(numeric, ", ")
	}

	var seriesColors []string
	if kind == Radar {
		seriesColors = randomColors(len(numeric))
	}

	for i, h := range numeric {
		raw := ds.Column(h)
		values := make([]float64, len(raw))
		for j, v := range raw {
			values[j] = dataset.NumberOrZero(v)
		}

		s := Series{Name: h, Values: values}
		if kind == Radar {
			s.Color = seriesColors[i]
		} else {
			s.PointColors = randomColors(len(values))
		}
		set.Series = append(set.Series, s)
	}

	return set, nil
}

func buildLabels(ds *dataset.Dataset, headers []string) []string {
	columns := make([][]string, len(headers))
	for i, h := range headers {
		columns[i] = ds.Column(h)
	}

	labels := make([]string, ds.Len())
	parts := make([]string, len(headers))
	for row := range labels {
		for i := range columns {
			parts[i] = columns[i][row]
		}
		labels[row] = strings.Join(parts, LabelSeparator)
	}
	return labels
}
