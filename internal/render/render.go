// Package render draws a chart.SeriesSet as a PNG image or a single-page PDF.
//
// go-chart has no radar chart; radar sets are drawn as a line chart over the
// same labels with one line per series. Its stacked bar chart cannot draw
// below zero, so a stacked set holding a negative value is drawn as lines too.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
)

// ErrNothingToDraw is returned for sets with no labels or no series.
var ErrNothingToDraw = errors.New("nothing to draw")

const (
	DefaultWidth  = 1024
	DefaultHeight = 640
)

// Options control the output size and title.
type Options struct {
	Title  string
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// PNG renders set as a PNG image.
func PNG(w io.Writer, set *chart.SeriesSet, opts Options) error {
	if set == nil || len(set.Labels) == 0 || len(set.Series) == 0 {
		return ErrNothingToDraw
	}
	opts = opts.withDefaults()

	var err error
	switch set.Kind {
	case chart.Pie:
		err = renderPie(w, set, opts)
	case chart.Doughnut:
		err = renderDonut(w, set, opts)
	case chart.Line, chart.Radar:
		err = renderLine(w, set, opts)
	case chart.Bar:
		switch {
		case !set.Stacked:
			err = renderBar(w, set, opts)
		case hasNegative(set):
			err = renderLine(w, set, opts)
		default:
			err = renderStackedBar(w, set, opts)
		}
	default:
		return fmt.Errorf("render %q: %w", set.Kind, chart.ErrUnknownKind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", set.Kind, err)
	}
	return nil
}

func renderBar(w io.Writer, set *chart.SeriesSet, opts Options) error {
	s := set.Series[0]
	bars := make([]gochart.Value, len(set.Labels))
	for i, label := range set.Labels {
		c := pointColor(s, i)
		bars[i] = gochart.Value{
			Label: label,
			Value: s.Values[i],
			Style: gochart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1},
		}
	}

	bc := gochart.BarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   barWidth(opts.Width, len(bars)),
		YAxis: gochart.YAxis{
			Name:  axisTitle(set, set.YAxisTitle),
			Range: valueRange(s.Values),
		},
		Bars: bars,
	}
	return bc.Render(gochart.PNG, w)
}

func hasNegative(set *chart.SeriesSet) bool {
	for _, s := range set.Series {
		for _, v := range s.Values {
			if v < 0 {
				return true
			}
		}
	}
	return false
}

func renderStackedBar(w io.Writer, set *chart.SeriesSet, opts Options) error {
	bars := make([]gochart.StackedBar, len(set.Labels))
	for i, label := range set.Labels {
		values := make([]gochart.Value, len(set.Series))
		for j, s := range set.Series {
			c := seriesColor(s, j)
			values[j] = gochart.Value{
				Label: s.Name,
				Value: s.Values[i],
				Style: gochart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1},
			}
		}
		bars[i] = gochart.StackedBar{Name: label, Values: values}
	}

	sbc := gochart.StackedBarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40}},
		Bars:       bars,
	}
	return sbc.Render(gochart.PNG, w)
}

func renderLine(w io.Writer, set *chart.SeriesSet, opts Options) error {
	n := len(set.Labels)
	xs := make([]float64, n)
	ticks := make([]gochart.Tick, 0, n+1)
	for i, label := range set.Labels {
		xs[i] = float64(i + 1)
		ticks = append(ticks, gochart.Tick{Value: xs[i], Label: label})
	}

	// A single point needs a non-zero x range.
	minX, maxX := 0.5, float64(n)+0.5
	if n == 1 {
		maxX = 2.0
		ticks = append(ticks, gochart.Tick{Value: 2, Label: ""})
	}

	series := make([]gochart.Series, 0, len(set.Series))
	var all []float64
	for i, s := range set.Series {
		c := seriesColor(s, i)
		cs := gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style: gochart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				DotColor:    c,
				DotWidth:    4,
			},
		}
		if n == 1 {
			cs.XValues = []float64{xs[0], 2}
			cs.YValues = []float64{s.Values[0], s.Values[0]}
		}
		series = append(series, cs)
		all = append(all, s.Values...)
	}

	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  axisTitle(set, set.XAxisTitle),
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: gochart.YAxis{
			Name:  axisTitle(set, set.YAxisTitle),
			Range: valueRange(all),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch.Render(gochart.PNG, w)
}

func renderPie(w io.Writer, set *chart.SeriesSet, opts Options) error {
	values, err := sliceValues(set)
	if err != nil {
		return err
	}
	pc := gochart.PieChart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	return pc.Render(gochart.PNG, w)
}

func renderDonut(w io.Writer, set *chart.SeriesSet, opts Options) error {
	values, err := sliceValues(set)
	if err != nil {
		return err
	}
	dc := gochart.DonutChart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	return dc.Render(gochart.PNG, w)
}

// sliceValues converts the first series into pie slices. Proportional
// charts need a positive total.
func sliceValues(set *chart.SeriesSet) ([]gochart.Value, error) {
	s := set.Series[0]
	values := make([]gochart.Value, 0, len(set.Labels))
	var total float64
	for i, label := range set.Labels {
		v := s.Values[i]
		if v < 0 {
			return nil, fmt.Errorf("negative value %g for %q", v, label)
		}
		total += v
		c := pointColor(s, i)
		values = append(values, gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{FillColor: c, StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		})
	}
	if total == 0 {
		return nil, ErrNothingToDraw
	}
	return values, nil
}

// valueRange pads the y range so it always includes zero and is never empty.
func valueRange(values []float64) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func barWidth(width, n int) int {
	w := width / (2 * max(n, 1))
	return min(max(w, 8), 80)
}

func axisTitle(set *chart.SeriesSet, title string) string {
	if !set.ShowAxisTitles {
		return ""
	}
	return title
}

func pointColor(s chart.Series, i int) drawing.Color {
	if i < len(s.PointColors) {
		return hexColor(s.PointColors[i])
	}
	return seriesColor(s, i)
}

func seriesColor(s chart.Series, i int) drawing.Color {
	switch {
	case s.Color != "":
		return hexColor(s.Color)
	case len(s.PointColors) > 0:
		return hexColor(s.PointColors[0])
	}
	return gochart.GetDefaultColor(i)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
