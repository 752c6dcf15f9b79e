package templates

import "github.com/a-h/templ"

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f7f7f9;color:#222}
header{background:#2d3748;color:#fff;padding:.75rem 1.5rem}
header a{color:#fff;text-decoration:none;font-weight:600}
main{max-width:1100px;margin:1.5rem auto;padding:0 1rem}
.card{background:#fff;border-radius:6px;box-shadow:0 1px 3px rgba(0,0,0,.1);padding:1rem 1.25rem;margin-bottom:1rem}
.alert{border-left:4px solid #c53030;background:#fff5f5;padding:.75rem 1rem;margin-bottom:1rem}
.alert small{color:#666}
.notice{border-left:4px solid #2b6cb0;background:#ebf8ff;padding:.75rem 1rem;margin-bottom:1rem}
table{border-collapse:collapse;width:100%}
th,td{border:1px solid #e2e8f0;padding:.25rem .4rem;text-align:left}
td input{width:100%;border:0;background:transparent}
.role{font-weight:400;color:#718096;font-size:.8em}
img.chart{max-width:100%}`

// Layout wraps body in the shared page shell.
func Layout(title string, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(` - Slice of Pie</title><style>`, styles, `</style></head><body>`,
			`<header><a href="/">Slice of Pie</a></header><main>`)
		h.component(body)
		h.raw(`</main></body></html>`)
	})
}
