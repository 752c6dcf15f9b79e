package templates

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

// ErrorAlert renders an inline error block.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<div>`)
			h.text(action)
			h.raw(`</div>`)
		}
		if code != "" {
			h.raw(`<small>Code: `)
			h.text(code)
			h.raw(`</small>`)
		}
		h.raw(`</div>`)
	})
}

// ErrorPage renders a full page for a failed request. A nil e shows the
// status text alone.
func ErrorPage(status int, e *ErrorView) templ.Component {
	title := http.StatusText(status)
	if title == "" {
		title = "Error " + strconv.Itoa(status)
	}
	if e == nil {
		e = &ErrorView{Message: title}
	}
	return Layout(title, component(func(h *htmlWriter) {
		h.raw(`<div class="card"><h1>`)
		h.text(title)
		h.raw(`</h1>`)
		h.component(ErrorAlert(e.Message, e.Action, e.Code))
		h.raw(`<a href="/">Upload a file</a></div>`)
	}))
}
