package templates

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
)

// SessionPageParams is everything the chart page shows for one session.
type SessionPageParams struct {
	ID           string
	FileName     string
	Headers      []string
	Rows         [][]string
	HiddenRows   int
	Columns      chart.Columns
	Kinds        []chart.Kind
	Selected     chart.Kind
	ExportFormat chart.ExportFormat
	HasNegative  bool
	ChartURL     string
	ChartError   *ErrorView
	Notice       string
	Error        *ErrorView
}

func (p SessionPageParams) path(suffix string) string {
	return "/s/" + p.ID + suffix
}

// SessionPage renders the chart, its controls and the editable grid.
func SessionPage(p SessionPageParams) templ.Component {
	return Layout(p.FileName, component(func(h *htmlWriter) {
		if p.Error != nil {
			h.component(ErrorAlert(p.Error.Message, p.Error.Action, p.Error.Code))
		}
		if p.Notice != "" {
			h.raw(`<div class="notice">`)
			h.text(p.Notice)
			h.raw(`</div>`)
		}
		h.component(chartCard(p))
		h.component(gridCard(p))
	}))
}

// selectableKinds drops pie and doughnut when negative values are present,
// whatever Kinds says.
func (p SessionPageParams) selectableKinds() []chart.Kind {
	out := make([]chart.Kind, 0, len(p.Kinds))
	for _, k := range p.Kinds {
		if k.Proportional() && p.HasNegative {
			continue
		}
		out = append(out, k)
	}
	return out
}

func chartCard(p SessionPageParams) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="card"><h1>`)
		h.text(p.FileName)
		h.raw(`</h1>`)

		kinds := p.selectableKinds()
		if len(kinds) == 0 {
			h.raw(`<p>No chart types are available for this data.</p>`)
		} else {
			h.raw(`<form method="post" action="`)
			h.text(p.path("/chart"))
			h.raw(`"><label>Chart <select name="kind">`)
			for _, k := range kinds {
				h.raw(`<option value="`)
				h.text(string(k))
				h.raw(`"`)
				if k == p.Selected {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(k.Title())
				h.raw(`</option>`)
			}
			h.raw(`</select></label> <label>Save as <select name="format">`)
			for _, f := range []chart.ExportFormat{chart.ExportPNG, chart.ExportPDF, chart.ExportCSV, chart.ExportXLSX} {
				h.raw(`<option value="`)
				h.text(string(f))
				h.raw(`"`)
				if f == p.ExportFormat {
					h.raw(` selected`)
				}
				h.raw(`>`)
				h.text(string(f))
				h.raw(`</option>`)
			}
			h.raw(`</select></label> <button type="submit">Apply</button></form>`)
			if p.HasNegative {
				h.raw(`<p><small>Pie and doughnut charts are unavailable because the data contains negative values.</small></p>`)
			}
		}

		switch {
		case p.ChartError != nil:
			h.component(ErrorAlert(p.ChartError.Message, p.ChartError.Action, p.ChartError.Code))
		case p.ChartURL != "":
			h.raw(`<p><img class="chart" alt="chart" src="`)
			h.text(p.ChartURL)
			h.raw(`"></p>`)
		}

		h.raw(`<p><a href="`)
		h.text(p.path("/export"))
		h.raw(`">Download `)
		h.text(string(p.ExportFormat))
		h.raw(`</a></p></div>`)
	})
}

func gridCard(p SessionPageParams) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="card"><table><thead><tr><th>#</th>`)
		for _, hdr := range p.Headers {
			h.raw(`<th>`)
			h.text(hdr)
			h.raw(` <span class="role">`)
			h.text(string(p.Columns.Role(hdr)))
			h.raw(`</span></th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		action := p.path("/cells")
		for i, row := range p.Rows {
			idx := strconv.Itoa(i)
			h.raw(`<tr><td>`, strconv.Itoa(i+1), `</td>`)
			for j, hdr := range p.Headers {
				h.raw(`<td><form method="post" action="`)
				h.text(action)
				h.raw(`"><input type="hidden" name="row" value="`, idx, `">`,
					`<input type="hidden" name="header" value="`)
				h.text(hdr)
				h.raw(`"><input name="value" aria-label="`)
				h.text(hdr + " row " + strconv.Itoa(i+1))
				h.raw(`" value="`)
				if j < len(row) {
					h.text(row[j])
				}
				h.raw(`"></form></td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		if p.HiddenRows > 0 {
			h.raw(`<p><small>`)
			h.text(strconv.Itoa(p.HiddenRows) + " more rows not shown. Download the data to see every row.")
			h.raw(`</small></p>`)
		}
		h.raw(`</div>`)
	})
}
