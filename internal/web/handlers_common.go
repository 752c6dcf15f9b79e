package web

// handlers_common.go holds request decoding and response helpers shared by
// the page and API handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/core"
	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
	"github.com/JonMunkholm/SliceOfPie/internal/logging"
)

const (
	// multipartOverhead is allowed on top of the file size limit for form
	// boundaries and the other fields.
	multipartOverhead = 1 << 20

	// maxFormMemory is kept in memory by ParseMultipartForm; larger files
	// spill to disk.
	maxFormMemory = 32 << 20

	// maxJSONBody bounds small JSON request bodies.
	maxJSONBody = 64 << 10
)

func (s *Server) logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}

func errMissingField(name string) error {
	return fmt.Errorf("%w: missing field %q", core.ErrBadRequest, name)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// writeJSON encodes v as JSON with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// decodeJSON reads a small JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrBadRequest, err)
	}
	return nil
}

// readUpload extracts the multipart "file" and declared "type" fields. When
// no type is declared it is taken from the file extension.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Upload, error) {
	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.Upload{}, fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, limit)
		}
		return core.Upload{}, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.Upload{}, core.ErrNoFile
	}
	defer file.Close()

	declared := r.FormValue("type")
	if declared == "" {
		declared = filepath.Ext(header.Filename)
	}
	format, err := dataset.ParseFormat(declared)
	if err != nil {
		return core.Upload{}, fmt.Errorf("%w: %v", dataset.ErrExtensionMismatch, err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return core.Upload{}, fmt.Errorf("read upload: %w", err)
	}

	return core.Upload{FileName: header.Filename, Format: format, Data: data}, nil
}

// parseSpec reads optional kind and format values. Empty values keep the
// session's current selection.
func parseSpec(kind, format string) (chart.Spec, error) {
	var spec chart.Spec
	if kind != "" {
		k, err := chart.ParseKind(kind)
		if err != nil {
			return spec, err
		}
		spec.Kind = k
	}
	if format != "" {
		f, err := chart.ParseExportFormat(format)
		if err != nil {
			return spec, err
		}
		spec.ExportFormat = f
	}
	return spec, nil
}

// errorBody is an error embedded in a successful response.
type errorBody struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// SessionResponse is the JSON view of a session.
type SessionResponse struct {
	ID          string            `json:"id"`
	FileName    string            `json:"fileName"`
	Format      string            `json:"format"`
	Headers     []string          `json:"headers"`
	Rows        [][]string        `json:"rows"`
	Columns     chart.Columns     `json:"columns"`
	Eligibility chart.Eligibility `json:"eligibility"`
	Spec        chart.Spec        `json:"spec"`
	Series      *chart.SeriesSet  `json:"series,omitempty"`
	SeriesError *errorBody        `json:"seriesError,omitempty"`
	FellBack    bool              `json:"fellBack"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toResponse(st *core.State) SessionResponse {
	snap := st.Snapshot
	resp := SessionResponse{
		ID:          st.ID,
		FileName:    st.FileName,
		Format:      st.Format.String(),
		Headers:     snap.Dataset.Headers(),
		Rows:        snap.Dataset.Records(),
		Columns:     snap.Columns,
		Eligibility: snap.Eligibility,
		Spec:        snap.Spec,
		Series:      snap.Series,
		FellBack:    snap.FellBack,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
	if snap.SeriesErr != nil {
		msg := core.MapError(snap.SeriesErr)
		resp.SeriesError = &errorBody{Message: msg.Message, Action: msg.Action, Code: msg.Code}
	}
	return resp
}
