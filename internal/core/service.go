package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
	"github.com/JonMunkholm/SliceOfPie/internal/logging"
	"github.com/JonMunkholm/SliceOfPie/internal/render"
)

// Defaults applied by NewService for zero Options fields.
const (
	DefaultMaxFileSize   = 20 << 20
	DefaultParseTimeout  = 2 * time.Minute
	DefaultSessionTTL    = 2 * time.Hour
	DefaultMaxSessions   = 1000
	DefaultSweepInterval = 5 * time.Minute
)

// Options configure a Service.
type Options struct {
	MaxFileSize          int64
	MaxConcurrentUploads int
	UploadWait           time.Duration
	ParseTimeout         time.Duration
	SessionTTL           time.Duration
	MaxSessions          int
	SweepInterval        time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.ParseTimeout <= 0 {
		o.ParseTimeout = DefaultParseTimeout
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	return o
}

// Upload is a file submitted for charting.
type Upload struct {
	FileName string
	Format   dataset.Format
	Data     []byte
}

// parseFunc matches dataset.Parse.
type parseFunc func(ctx context.Context, r io.Reader, format dataset.Format) (*dataset.Dataset, error)

// Service owns the chart sessions. Each session holds exactly one Dataset;
// sessions never share state.
type Service struct {
	opts    Options
	limiter *UploadLimiter
	audit   AuditLogger
	parse   parseFunc
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
	closing  bool
}

// NewService creates a Service. A nil audit logger disables auditing.
func NewService(opts Options, audit AuditLogger) *Service {
	opts = opts.withDefaults()
	if audit == nil {
		audit = NopAuditLog{}
	}
	return &Service{
		opts:     opts,
		limiter:  NewUploadLimiter(opts.MaxConcurrentUploads, opts.UploadWait),
		audit:    audit,
		parse:    dataset.Parse,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Limiter returns the parse limiter.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// CreateSession parses up and registers a new session holding the result.
// The session only becomes visible once parsing has succeeded.
func (s *Service) CreateSession(ctx context.Context, up Upload) (*State, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	ds, err := s.load(ctx, up)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &session{
		id:         uuid.NewString(),
		createdAt:  now,
		seq:        1,
		committed:  1,
		fileName:   up.FileName,
		format:     up.Format,
		snap:       chart.Reconcile(ds, chart.DefaultSpec()),
		lastAccess: now,
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	if len(s.sessions) >= s.opts.MaxSessions {
		s.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	ctx = logging.ContextWithSession(ctx, sess.id)
	logging.WithFields(ctx, "file", up.FileName, "format", up.Format.String()).Info("session created",
		"rows", ds.Len(),
		"columns", ds.ColumnCount(),
		"kinds", sess.snap.Eligibility.Kinds,
	)
	s.record(ctx, sess.id, ActionUpload, up, ds, nil)

	return sess.state(), nil
}

// ReplaceFile loads a new file into an existing session, replacing its
// Dataset entirely. The chart selection is kept and falls back to Bar if
// the new data does not allow it.
//
// If a later load or an edit commits while this file is being parsed, the
// parsed result is discarded and ErrSuperseded is returned. A rejected or
// unparsable upload leaves loads already in flight untouched.
func (s *Service) ReplaceFile(ctx context.Context, id string, up Upload) (*State, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(up); err != nil {
		return nil, err
	}

	ticket := sess.reserve()

	ds, err := s.load(ctx, up)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if !sess.commitLocked(ticket) {
		sess.mu.Unlock()
		logging.FromContext(ctx).Info("discarding superseded upload", "file", up.FileName)
		return nil, ErrSuperseded
	}
	sess.fileName = up.FileName
	sess.format = up.Format
	sess.snap = chart.Reconcile(ds, sess.snap.Spec)
	sess.lastAccess = s.now()
	state := sess.stateLocked()
	sess.mu.Unlock()

	s.record(ctx, id, ActionUpload, up, ds, map[string]any{"replace": true})
	return state, nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, id string) (*State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	sess.touch(s.now())
	return sess.state(), nil
}

// EditCell changes one cell and re-derives the chart. On error the session
// is unchanged.
func (s *Service) EditCell(ctx context.Context, id string, row int, header, value string) (*State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, err := chart.Edit(sess.snap, row, header, value)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.commitEditLocked()
	sess.snap = next
	sess.lastAccess = s.now()
	state := sess.stateLocked()
	sess.mu.Unlock()

	if next.FellBack {
		logging.FromContext(ctx).Info("chart kind no longer eligible, using bar",
			"kinds", next.Eligibility.Kinds)
	}
	s.record(ctx, id, ActionEdit, Upload{}, next.Dataset, map[string]any{
		"row":    row,
		"header": header,
	})
	return state, nil
}

// SelectChart changes the chart kind and export preference. An ineligible
// kind is rejected and the session is unchanged.
func (s *Service) SelectChart(ctx context.Context, id string, spec chart.Spec) (*State, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	next, err := sess.snap.Select(spec)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.snap = next
	sess.lastAccess = s.now()
	state := sess.stateLocked()
	sess.mu.Unlock()

	s.record(ctx, id, ActionChartSelect, Upload{}, next.Dataset, map[string]any{
		"kind":   string(next.Spec.Kind),
		"format": string(next.Spec.ExportFormat),
	})
	return state, nil
}

// Series builds the render payload for kind without changing the session's
// selection. An empty kind means the selected one.
func (s *Service) Series(ctx context.Context, id string, kind chart.Kind) (*chart.SeriesSet, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := state.Snapshot

	if kind == "" || kind == snap.Spec.Kind {
		if snap.SeriesErr != nil {
			return nil, snap.SeriesErr
		}
		return snap.Series, nil
	}
	return chart.Build(snap.Dataset, snap.Columns, kind)
}

// Export is the result of ExportTo.
type Export struct {
	FileName    string
	ContentType string
}

// ExportTo writes the session's dataset (csv, xlsx) or chart (png, pdf) to
// w. An empty format means the session's preferred one.
func (s *Service) ExportTo(ctx context.Context, w io.Writer, id string, format chart.ExportFormat) (*Export, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap := state.Snapshot
	if format == "" {
		format = snap.Spec.ExportFormat
	}

	base := exportBaseName(state.FileName)
	out := &Export{FileName: base + "." + string(format)}

	// Render into a buffer so a failure never leaves a partial body.
	var buf bytes.Buffer
	switch format {
	case chart.ExportCSV:
		out.ContentType = "text/csv; charset=utf-8"
		err = dataset.WriteCSV(&buf, snap.Dataset)
	case chart.ExportXLSX:
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = dataset.WriteXLSX(&buf, snap.Dataset)
	case chart.ExportPNG, chart.ExportPDF:
		if snap.SeriesErr != nil {
			return nil, snap.SeriesErr
		}
		opts := render.Options{Title: base}
		if format == chart.ExportPNG {
			out.ContentType = "image/png"
			err = render.PNG(&buf, snap.Series, opts)
		} else {
			out.ContentType = "application/pdf"
			err = render.PDF(&buf, snap.Series, opts)
		}
	default:
		return nil, fmt.Errorf("export %q: %w", format, chart.ErrUnknownExportFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	if _, err := buf.WriteTo(w); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}

	s.record(ctx, id, ActionExport, Upload{FileName: state.FileName}, snap.Dataset, map[string]any{
		"format": string(format),
		"kind":   string(snap.Spec.Kind),
	})
	return out, nil
}

// AuditHistory returns recent audit entries for a session. It fails with
// ErrAuditDisabled when the audit logger cannot be queried.
func (s *Service) AuditHistory(ctx context.Context, id string, limit int) ([]AuditEntry, error) {
	if _, err := s.lookup(id); err != nil {
		return nil, err
	}
	reader, ok := s.audit.(AuditReader)
	if !ok {
		return nil, ErrAuditDisabled
	}
	return reader.History(ctx, id, limit)
}

// CloseSession removes a session.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	state := sess.state()
	s.record(ctx, id, ActionSessionClose, Upload{FileName: state.FileName}, state.Snapshot.Dataset, nil)
	return nil
}

// Status is a point-in-time view for monitoring.
type Status struct {
	Sessions     int                 `json:"sessions"`
	MaxSessions  int                 `json:"max_sessions"`
	Uploads      UploadLimiterStatus `json:"uploads"`
	ShuttingDown bool                `json:"shutting_down"`
}

// Status reports session and limiter usage.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Sessions:     len(s.sessions),
		MaxSessions:  s.opts.MaxSessions,
		Uploads:      s.limiter.Status(),
		ShuttingDown: s.closing,
	}
}

// Shutdown stops accepting uploads and waits for in-flight parses.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	slog.Info("waiting for active uploads", "active", s.limiter.ActiveCount())
	return s.limiter.WaitForDrain(ctx)
}

// validate runs the checks that need no parsing.
func (s *Service) validate(up Upload) error {
	if len(up.Data) == 0 && up.FileName == "" {
		return ErrNoFile
	}
	if int64(len(up.Data)) > s.opts.MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(up.Data), s.opts.MaxFileSize)
	}
	return dataset.ValidateExtension(up.FileName, up.Format)
}

// load validates and parses an upload under the limiter.
func (s *Service) load(ctx context.Context, up Upload) (*dataset.Dataset, error) {
	if err := s.validate(up); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	parseCtx, cancel := context.WithTimeout(ctx, s.opts.ParseTimeout)
	defer cancel()

	start := time.Now()
	ds, err := s.parse(parseCtx, bytes.NewReader(up.Data), up.Format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", up.FileName, err)
	}

	logging.WithFields(ctx, "file", up.FileName).Debug("file parsed",
		"rows", ds.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closing {
		return ErrShuttingDown
	}
	return nil
}

// record writes an audit event. Audit failures are logged, never returned.
func (s *Service) record(ctx context.Context, id string, action AuditAction, up Upload, ds *dataset.Dataset, detail map[string]any) {
	client := ClientFromContext(ctx)
	ev := AuditEvent{
		SessionID: id,
		Action:    action,
		FileName:  up.FileName,
		Detail:    detail,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}
	if up.FileName != "" && action == ActionUpload {
		ev.Format = up.Format.String()
	}
	if ds != nil {
		ev.RowCount = ds.Len()
		ev.ColumnCount = ds.ColumnCount()
	}

	if err := s.audit.Log(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("audit log failed", "action", action, "error", err)
	}
}

// exportBaseName derives a download name from the uploaded file name.
func exportBaseName(fileName string) string {
	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." {
		return "chart"
	}
	return base
}
