package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/core"
	"github.com/JonMunkholm/SliceOfPie/internal/web/templates"
)

// maxGridRows caps the rows rendered in the editable grid.
const maxGridRows = 500

// fellBackParam marks the redirect after an edit that changed the chart kind.
const fellBackParam = "fellback"

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderUploadPage(w, r, http.StatusOK, nil)
}

// handleUploadForm creates a session from the upload form and redirects to
// its page. Failures re-render the form with the message.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(w, r)
	if err == nil {
		var st *core.State
		st, err = s.service.CreateSession(r.Context(), up)
		if err == nil {
			http.Redirect(w, r, "/s/"+st.ID, http.StatusSeeOther)
			return
		}
	}

	if wantsJSON(r) || isHTMX(r) {
		s.respondError(w, r, err)
		return
	}
	s.logFormError(r, err)
	s.renderUploadPage(w, r, statusFor(err), errorView(err))
}

// handleSessionPage renders the chart, selection controls and grid.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Get(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	fellBack := r.URL.Query().Get(fellBackParam) == "1"
	s.renderSessionPage(w, r, http.StatusOK, st, fellBack, nil)
}

// handleEditCellForm applies one grid edit and returns to the page.
func (s *Server) handleEditCellForm(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	row, err := strconv.Atoi(r.PostFormValue("row"))
	if err != nil {
		s.formError(w, r, id, core.ErrBadRequest)
		return
	}

	st, err := s.service.EditCell(r.Context(), id, row, r.PostFormValue("header"), r.PostFormValue("value"))
	if err != nil {
		s.formError(w, r, id, err)
		return
	}
	target := "/s/" + id
	if st.Snapshot.FellBack {
		target += "?" + fellBackParam + "=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleSelectChartForm applies the chart kind and export format selection.
func (s *Server) handleSelectChartForm(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	spec, err := parseSpec(r.PostFormValue("kind"), r.PostFormValue("format"))
	if err != nil {
		s.formError(w, r, id, err)
		return
	}

	if _, err := s.service.SelectChart(r.Context(), id, spec); err != nil {
		s.formError(w, r, id, err)
		return
	}
	http.Redirect(w, r, "/s/"+id, http.StatusSeeOther)
}

// formError re-renders the session page with err, or the error page when
// the session itself is gone.
func (s *Server) formError(w http.ResponseWriter, r *http.Request, id string, err error) {
	st, getErr := s.service.Get(r.Context(), id)
	if getErr != nil {
		s.respondError(w, r, getErr)
		return
	}
	s.logFormError(r, err)
	s.renderSessionPage(w, r, statusFor(err), st, false, errorView(err))
}

func (s *Server) logFormError(r *http.Request, err error) {
	s.logger(r).Warn("form rejected",
		"path", r.URL.Path,
		"code", core.MapError(err).Code,
		"error", err.Error(),
	)
}

func (s *Server) renderUploadPage(w http.ResponseWriter, r *http.Request, status int, e *templates.ErrorView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.UploadPage(templates.UploadPageParams{
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		Error:       e,
	})
	if err := page.Render(r.Context(), w); err != nil {
		s.logger(r).Error("render upload page", "error", err)
	}
}

func (s *Server) renderSessionPage(w http.ResponseWriter, r *http.Request, status int, st *core.State, fellBack bool, e *templates.ErrorView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.SessionPage(sessionPageParams(st, fellBack, e)).Render(r.Context(), w); err != nil {
		s.logger(r).Error("render session page", "error", err)
	}
}

// fellBack shows the fallback notice. It is set only on the redirect that
// follows the edit which caused the fallback.
func sessionPageParams(st *core.State, fellBack bool, e *templates.ErrorView) templates.SessionPageParams {
	snap := st.Snapshot
	rows := snap.Dataset.Records()
	hidden := 0
	if len(rows) > maxGridRows {
		hidden = len(rows) - maxGridRows
		rows = rows[:maxGridRows]
	}

	p := templates.SessionPageParams{
		ID:           st.ID,
		FileName:     st.FileName,
		Headers:      snap.Dataset.Headers(),
		Rows:         rows,
		HiddenRows:   hidden,
		Columns:      snap.Columns,
		Kinds:        snap.Eligibility.Kinds,
		Selected:     snap.Spec.Kind,
		ExportFormat: snap.Spec.ExportFormat,
		HasNegative:  snap.Eligibility.HasNegative,
		Error:        e,
	}
	if fellBack {
		p.Notice = "The selected chart type is not available for this data, so a " +
			chart.Bar.Title() + " chart is shown instead."
	}
	if snap.SeriesErr != nil {
		p.ChartError = errorView(snap.SeriesErr)
	} else {
		p.ChartURL = "/s/" + st.ID + "/chart.png?v=" + strconv.FormatInt(st.UpdatedAt.UnixNano(), 10)
	}
	return p
}
