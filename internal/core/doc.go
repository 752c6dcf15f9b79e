// Package core runs chart sessions on top of the dataset and chart engine.
//
// A session holds one uploaded Dataset and the chart.Snapshot derived from
// it. The [Service] is the only entry point; the web handlers and tests use
// it without knowing how sessions are stored.
//
// # Sessions
//
// [Service.CreateSession] parses a file and registers a session only once
// parsing succeeds. [Service.ReplaceFile], [Service.EditCell] and
// [Service.SelectChart] swap the session's snapshot atomically under the
// session lock, so readers always see a complete snapshot.
//
// File loads are last-write-wins: a load takes a ticket once it passes
// validation and commits only if no later load or edit has committed;
// otherwise it returns [ErrSuperseded] and the newer data stays. Uploads
// that are rejected or fail to parse never commit and supersede nothing.
//
// # Resource limits
//
// Parsing runs under an [UploadLimiter] so only a bounded number of files
// are decoded at once. Idle sessions expire after the configured TTL and are
// removed by [Service.StartSweeper].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - FILE001-FILE006: upload and parse errors
//   - CHART001-CHART004: chart selection and rendering errors
//   - EDIT001-EDIT002: invalid edit targets
//   - SES001-SES002: session lookup and capacity
//   - UPL002-UPL005: limiter, superseded loads, cancellation and timeouts
//   - RATE001, AUTH001-AUTH002, REQ001: request rejected at the edge
//   - AUD001, SRV001: audit unavailable, server shutting down
//
// # Audit Logging
//
// When a database is configured, uploads, edits, chart selections, exports
// and session closes are recorded by [PgAuditLog]. Edits record the row
// index and column name only; cell values are never stored.
package core
