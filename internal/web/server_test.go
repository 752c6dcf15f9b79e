package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/config"
	"github.com/JonMunkholm/SliceOfPie/internal/core"
	mw "github.com/JonMunkholm/SliceOfPie/internal/web/middleware"
)

const scoresCSV = "Name,Score\nA,10\nB,20\nC,30\n"

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Upload:  config.UploadConfig{MaxFileSize: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second, ParseTimeout: time.Minute},
		Session: config.SessionConfig{TTL: time.Hour, MaxSessions: 10, SweepInterval: time.Minute},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc := core.NewService(core.Options{
		MaxFileSize:          cfg.Upload.MaxFileSize,
		MaxConcurrentUploads: cfg.Upload.MaxConcurrent,
		UploadWait:           cfg.Upload.MaxWaitTime,
		ParseTimeout:         cfg.Upload.ParseTimeout,
		SessionTTL:           cfg.Session.TTL,
		MaxSessions:          cfg.Session.MaxSessions,
	}, nil)
	return NewServer(svc, cfg)
}

// multipartBody builds a form with a "file" part and an optional "type".
func multipartBody(t *testing.T, fileName, content, declared string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	if declared != "" {
		require.NoError(t, mpw.WriteField("type", declared))
	}
	if fileName != "" {
		part, err := mpw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())
	return &buf, mpw.FormDataContentType()
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, method, path, fileName, content, declared string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, fileName, content, declared)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", ct)
	return do(t, s, req)
}

func doJSON(t *testing.T, s *Server, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if v != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(v))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	return do(t, s, req)
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), rec.Body.String())
	return resp
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body mw.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body), rec.Body.String())
	return body.Code
}

func createSession(t *testing.T, s *Server, content string) SessionResponse {
	t.Helper()
	rec := upload(t, s, http.MethodPost, "/api/sessions", "scores.csv", content, "csv")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeSession(t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := upload(t, s, http.MethodPost, "/api/sessions", "scores.csv", scoresCSV, "csv")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "/api/sessions/"+resp.ID, rec.Header().Get("Location"))
	assert.Equal(t, "scores.csv", resp.FileName)
	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, []string{"Name", "Score"}, resp.Headers)
	assert.Equal(t, []chart.Kind{chart.Bar, chart.Line, chart.Pie, chart.Doughnut}, resp.Eligibility.Kinds)
	assert.Equal(t, chart.Bar, resp.Spec.Kind)
	require.NotNil(t, resp.Series)
	assert.Equal(t, []string{"A", "B", "C"}, resp.Series.Labels)
}

func TestCreateSession_TypeFromExtension(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := upload(t, s, http.MethodPost, "/api/sessions", "scores.csv", scoresCSV, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateSession_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		content    string
		declared   string
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{"no file", "", "", "csv", 0, http.StatusBadRequest, "FILE004"},
		{"extension mismatch", "scores.xlsx", scoresCSV, "csv", 0, http.StatusBadRequest, "FILE006"},
		{"unsupported type", "scores.txt", scoresCSV, "txt", 0, http.StatusBadRequest, "FILE006"},
		{"header only", "scores.csv", "Name,Score\n", "csv", 0, http.StatusBadRequest, "FILE005"},
		{"too large", "scores.csv", scoresCSV, "csv", 8, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Upload.MaxFileSize = tt.maxSize
			}
			s := newTestServer(t, cfg)

			rec := upload(t, s, http.MethodPost, "/api/sessions", tt.fileName, tt.content, tt.declared)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SES001", errorCode(t, rec))
}

func TestEditCell(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)
	path := "/api/sessions/" + sess.ID

	rec := doJSON(t, s, http.MethodPut, path+"/chart", SelectChartRequest{Kind: "pie"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, chart.Pie, decodeSession(t, rec).Spec.Kind)

	// A negative value removes pie, and the selection falls back to bar.
	row := 1
	rec = doJSON(t, s, http.MethodPost, path+"/cells", EditCellRequest{Row: &row, Header: "Score", Value: "-5"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeSession(t, rec)

	assert.Equal(t, []string{"B", "-5"}, resp.Rows[1])
	assert.True(t, resp.Eligibility.HasNegative)
	assert.Equal(t, []chart.Kind{chart.Bar, chart.Line}, resp.Eligibility.Kinds)
	assert.Equal(t, chart.Bar, resp.Spec.Kind)
	assert.True(t, resp.FellBack)
}

func TestEditCell_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)
	path := "/api/sessions/" + sess.ID + "/cells"

	row, bad := 0, 99
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"row out of range", EditCellRequest{Row: &bad, Header: "Score", Value: "1"}, http.StatusBadRequest, "EDIT001"},
		{"unknown header", EditCellRequest{Row: &row, Header: "Nope", Value: "1"}, http.StatusBadRequest, "EDIT002"},
		{"missing row", map[string]string{"header": "Score"}, http.StatusBadRequest, "REQ001"},
		{"unknown field", map[string]any{"row": 0, "colour": "red"}, http.StatusBadRequest, "REQ001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rec))
		})
	}

	// Failed edits leave the data alone.
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))
	assert.Equal(t, [][]string{{"A", "10"}, {"B", "20"}, {"C", "30"}}, decodeSession(t, rec).Rows)
}

func TestSelectChart_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)
	path := "/api/sessions/" + sess.ID + "/chart"

	rec := doJSON(t, s, http.MethodPut, path, SelectChartRequest{Kind: "radar"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CHART001", errorCode(t, rec))

	rec = doJSON(t, s, http.MethodPut, path, SelectChartRequest{Kind: "sunburst"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CHART003", errorCode(t, rec))

	rec = doJSON(t, s, http.MethodPut, path, SelectChartRequest{Format: "gif"})
	assert.Equal(t, "CHART003", errorCode(t, rec))
}

func TestSeries(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/series?kind=doughnut", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var set chart.SeriesSet
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&set))
	assert.Equal(t, chart.Doughnut, set.Kind)
	require.Len(t, set.Series, 1)
	assert.Equal(t, []float64{10, 20, 30}, set.Series[0].Values)
	assert.Len(t, set.Series[0].PointColors, 3)
}

func TestSeries_NoCategoricalAxis(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, "Q1,Q2\n5,7\n9,3\n")
	assert.NotNil(t, sess.SeriesError)
	assert.Equal(t, "CHART002", sess.SeriesError.Code)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/series", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CHART002", errorCode(t, rec))
}

func TestExport(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)
	base := "/api/sessions/" + sess.ID + "/export"

	rec := do(t, s, httptest.NewRequest(http.MethodGet, base+"/csv", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename=scores.csv`)
	assert.Equal(t, scoresCSV, rec.Body.String())

	// No format in the URL uses the session preference (png by default).
	rec = do(t, s, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(t, s, httptest.NewRequest(http.MethodGet, base+"/bmp", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplaceFile(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)

	rec := upload(t, s, http.MethodPut, "/api/sessions/"+sess.ID+"/file", "regions.csv",
		"Region,Q1,Q2\nEast,1,2\nWest,3,4\n", "csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeSession(t, rec)
	assert.Equal(t, sess.ID, resp.ID)
	assert.Equal(t, "regions.csv", resp.FileName)
	assert.Equal(t, []chart.Kind{chart.Bar, chart.Line, chart.Radar}, resp.Eligibility.Kinds)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)
	path := "/api/sessions/" + sess.ID

	rec := do(t, s, httptest.NewRequest(http.MethodDelete, path, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuditHistory_Disabled(t *testing.T) {
	s := newTestServer(t, testConfig())
	sess := createSession(t, s, scoresCSV)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/audit", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "AUD001", errorCode(t, rec))
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, testConfig())
	createSession(t, s, scoresCSV)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var st core.Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, 1, st.Sessions)
	assert.Equal(t, 10, st.MaxSessions)
	assert.Equal(t, 2, st.Uploads.MaxConcurrent)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	s := newTestServer(t, cfg)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(mw.APIKeyHeader, "secret")
	assert.Equal(t, http.StatusOK, do(t, s, req).Code)

	// Pages are not behind the key.
	assert.Equal(t, http.StatusOK, do(t, s, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, UploadLimit: 1}
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE001", errorCode(t, rec))
}

func TestPages_UploadFlow(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)

	rec = upload(t, s, http.MethodPost, "/upload", "scores.csv", scoresCSV, "csv")
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/s/"), location)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, location, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "scores.csv")
	assert.Contains(t, page, `<option value="doughnut">`)
	assert.Contains(t, page, location+"/chart.png")

	rec = do(t, s, httptest.NewRequest(http.MethodGet, location+"/chart.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	form := url.Values{"row": {"0"}, "header": {"Score"}, "value": {"15"}}
	req := httptest.NewRequest(http.MethodPost, location+"/cells", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, location, nil))
	assert.Contains(t, rec.Body.String(), `value="15"`)
}

func TestPages_FallbackNoticeShownOnce(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := upload(t, s, http.MethodPost, "/upload", "scores.csv", scoresCSV, "csv")
	location := rec.Header().Get("Location")

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return do(t, s, req)
	}

	require.Equal(t, http.StatusSeeOther, post(location+"/chart", url.Values{"kind": {"pie"}}).Code)

	tests := []struct {
		name       string
		value      string
		redirectTo string
	}{
		{"edit that removes the selected kind", "-5", location + "?fellback=1"},
		{"edit that keeps the kind", "-6", location},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(location+"/cells", url.Values{"row": {"1"}, "header": {"Score"}, "value": {tt.value}})
			require.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tt.redirectTo, rec.Header().Get("Location"))
		})
	}

	const notice = "is not available for this data"
	rec = do(t, s, httptest.NewRequest(http.MethodGet, location+"?fellback=1", nil))
	assert.Contains(t, rec.Body.String(), notice)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, location, nil))
	assert.NotContains(t, rec.Body.String(), notice)
}

func TestPages_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := upload(t, s, http.MethodPost, "/upload", "scores.xlsx", scoresCSV, "csv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload a valid CSV/XLSX file.")

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/s/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data to display. Please upload a file first.")

	rec = upload(t, s, http.MethodPost, "/upload", "scores.csv", scoresCSV, "csv")
	location := rec.Header().Get("Location")

	form := url.Values{"kind": {"radar"}}
	req := httptest.NewRequest(http.MethodPost, location+"/chart", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "CHART001")
	assert.Contains(t, rec.Body.String(), "<table>", "the grid is still shown")
}
