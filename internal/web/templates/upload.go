package templates

import (
	"strconv"

	"github.com/a-h/templ"
)

// UploadPageParams configures the upload form.
type UploadPageParams struct {
	MaxFileSize int64
	Error       *ErrorView
}

// UploadPage renders the file form: a file input and the declared type.
func UploadPage(p UploadPageParams) templ.Component {
	return Layout("Upload", component(func(h *htmlWriter) {
		h.raw(`<div class="card"><h1>Chart a spreadsheet</h1>`)
		if p.Error != nil {
			h.component(ErrorAlert(p.Error.Message, p.Error.Action, p.Error.Code))
		}
		h.raw(`<form method="post" action="/upload" enctype="multipart/form-data">`,
			`<p><label>File <input type="file" name="file" accept=".csv,.xlsx" required></label></p>`,
			`<p><label>Type <select name="type">`,
			`<option value="csv">CSV</option><option value="xlsx">XLSX</option>`,
			`</select></label></p>`,
			`<p><small>Maximum size `)
		h.text(formatBytes(p.MaxFileSize))
		h.raw(`</small></p><button type="submit">Upload</button></form></div>`)
	}))
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
