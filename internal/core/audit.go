package core

// audit.go records session lifecycle events in Postgres.
//
// Only metadata is stored: file names, sizes, row indexes and column names.
// Cell values never leave the session.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuditAction is the kind of event being recorded.
type AuditAction string

const (
	ActionUpload       AuditAction = "upload"
	ActionEdit         AuditAction = "edit"
	ActionChartSelect  AuditAction = "chart_select"
	ActionExport       AuditAction = "export"
	ActionSessionClose AuditAction = "session_close"
)

// AuditEvent is one audit record.
type AuditEvent struct {
	SessionID   string
	Action      AuditAction
	FileName    string
	Format      string
	RowCount    int
	ColumnCount int
	Detail      map[string]any
	IPAddress   string
	UserAgent   string
}

// AuditEntry is an AuditEvent as stored.
type AuditEntry struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"sessionId"`
	Action      AuditAction    `json:"action"`
	FileName    string         `json:"fileName,omitempty"`
	Format      string         `json:"format,omitempty"`
	RowCount    int            `json:"rowCount"`
	ColumnCount int            `json:"columnCount"`
	Detail      map[string]any `json:"detail,omitempty"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// AuditLogger records audit events. Implementations must be safe for
// concurrent use.
type AuditLogger interface {
	Log(ctx context.Context, ev AuditEvent) error
}

// AuditReader is implemented by audit loggers that can be queried.
type AuditReader interface {
	History(ctx context.Context, sessionID string, limit int) ([]AuditEntry, error)
}

// ErrAuditDisabled is returned by Service.AuditHistory when the audit logger
// cannot be queried.
var ErrAuditDisabled = errors.New("audit log is not enabled")

// NopAuditLog discards every event. It is used when no database is
// configured.
type NopAuditLog struct{}

func (NopAuditLog) Log(context.Context, AuditEvent) error { return nil }

// DB is the subset of *pgxpool.Pool used by PgAuditLog.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgAuditLog stores audit events in the chart_audit_log table.
type PgAuditLog struct {
	db DB
}

// NewPgAuditLog returns a Postgres-backed audit log. Call EnsureSchema once
// at startup.
func NewPgAuditLog(db DB) *PgAuditLog {
	return &PgAuditLog{db: db}
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS chart_audit_log (
	id           UUID PRIMARY KEY,
	session_id   UUID NOT NULL,
	action       TEXT NOT NULL,
	file_name    TEXT,
	format       TEXT,
	row_count    INTEGER NOT NULL DEFAULT 0,
	column_count INTEGER NOT NULL DEFAULT 0,
	detail       JSONB,
	ip_address   INET,
	user_agent   TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chart_audit_log_session_idx ON chart_audit_log (session_id, created_at);
CREATE INDEX IF NOT EXISTS chart_audit_log_created_idx ON chart_audit_log (created_at);
`

// EnsureSchema creates the audit table and indexes if they do not exist.
func (a *PgAuditLog) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

const insertAudit = `
INSERT INTO chart_audit_log
	(id, session_id, action, file_name, format, row_count, column_count, detail, ip_address, user_agent)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, NULLIF($10, ''))`

// Log inserts one event.
func (a *PgAuditLog) Log(ctx context.Context, ev AuditEvent) error {
	sessionID, err := uuid.Parse(ev.SessionID)
	if err != nil {
		return fmt.Errorf("audit session id: %w", err)
	}

	var detail []byte
	if len(ev.Detail) > 0 {
		detail, err = json.Marshal(ev.Detail)
		if err != nil {
			return fmt.Errorf("audit detail: %w", err)
		}
	}

	_, err = a.db.Exec(ctx, insertAudit,
		uuid.New(), sessionID, string(ev.Action), ev.FileName, ev.Format,
		ev.RowCount, ev.ColumnCount, detail, parseIP(ev.IPAddress), ev.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectSessionAudit = `
SELECT id, session_id, action, COALESCE(file_name, ''), COALESCE(format, ''),
	row_count, column_count, detail, COALESCE(host(ip_address), ''), COALESCE(user_agent, ''), created_at
FROM chart_audit_log
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2`

// DefaultHistoryLimit caps History when limit is not positive.
const DefaultHistoryLimit = 50

// History returns the most recent events for a session, newest first.
func (a *PgAuditLog) History(ctx context.Context, sessionID string, limit int) ([]AuditEntry, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := a.db.Query(ctx, selectSessionAudit, id, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var (
			e         AuditEntry
			entryID   uuid.UUID
			session   uuid.UUID
			action    string
			detailRaw []byte
		)
		if err := rows.Scan(&entryID, &session, &action, &e.FileName, &e.Format,
			&e.RowCount, &e.ColumnCount, &detailRaw, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = entryID.String()
		e.SessionID = session.String()
		e.Action = AuditAction(action)
		if len(detailRaw) > 0 {
			if err := json.Unmarshal(detailRaw, &e.Detail); err != nil {
				slog.Warn("audit detail is not valid JSON", "id", e.ID, "error", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// PurgeOlderThan deletes entries older than days and returns the count.
func (a *PgAuditLog) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := a.db.Exec(ctx,
		`DELETE FROM chart_audit_log WHERE created_at < now() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// parseIP strips a port if present. Unparseable addresses are stored as NULL.
func parseIP(s string) *netip.Addr {
	if s == "" {
		return nil
	}
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}
