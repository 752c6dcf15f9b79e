package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Typed errors from the engine are matched first with
// errors.Is/As; anything else falls through to substring patterns.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - File cannot be read as the declared type
//	FILE003 - File content is not valid text
//	FILE004 - No file was selected
//	FILE005 - File has no data rows
//	FILE006 - File extension does not match the declared type
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Chart kind is not available for this data
//	CHART002 - No text column to label the chart axis
//	CHART003 - Unknown chart kind or export format
//	CHART004 - Nothing to draw (every value is zero)
//
// # Edit Errors (EDIT001-EDIT099)
//
//	EDIT001 - Row index out of range
//	EDIT002 - Unknown column
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found or expired
//	SES002 - Too many open sessions
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy
//	UPL003 - Superseded by a newer upload
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Other
//
//	RATE001 - Rate limited
//	AUTH001 - Missing API key
//	AUTH002 - Invalid API key
//	SRV001  - Server shutting down
//	AUD001  - Audit history not enabled
//	REQ001  - Malformed request body or parameter
//	ERR000  - Unknown error; check the logs for the technical error

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/SliceOfPie/internal/chart"
	"github.com/JonMunkholm/SliceOfPie/internal/dataset"
	"github.com/JonMunkholm/SliceOfPie/internal/render"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// Sentinel errors for conditions detected outside the engine.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
	ErrSuperseded      = errors.New("upload superseded by a newer upload")
	ErrFileTooLarge    = errors.New("file too large")
	ErrNoFile          = errors.New("no file provided")
	ErrShuttingDown    = errors.New("server is shutting down")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrMissingAPIKey   = errors.New("missing api key")
	ErrInvalidAPIKey   = errors.New("invalid api key")
	ErrBadRequest      = errors.New("malformed request")
)

var (
	msgTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Upload a smaller file",
		Code:    "FILE001",
	}
	msgUnreadable = UserMessage{
		Message: "The file could not be read as the selected type",
		Action:  "Check that the file type matches the selection and the file has a header row",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "The file content is not valid text",
		Action:  "Save the file as UTF-8 CSV or as an Excel workbook",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Choose a CSV or XLSX file to upload",
		Code:    "FILE004",
	}
	msgNoRows = UserMessage{
		Message: "The file has a header row but no data rows",
		Action:  "Add at least one data row below the header",
		Code:    "FILE005",
	}
	msgWrongExtension = UserMessage{
		Message: "Please upload a valid CSV/XLSX file.",
		Action:  "Make sure the file extension matches the selected file type",
		Code:    "FILE006",
	}
	msgIneligible = UserMessage{
		Message: "This chart type is not available for the current data",
		Action:  "Pick one of the chart types offered for this data",
		Code:    "CHART001",
	}
	msgNoAxis = UserMessage{
		Message: "Every column is numeric, so there is nothing to label the chart with",
		Action:  "Add or edit a column so it contains text labels",
		Code:    "CHART002",
	}
	msgUnknownSelection = UserMessage{
		Message: "Unknown chart type or export format",
		Action:  "Use bar, line, radar, pie or doughnut, and png, pdf, csv or xlsx",
		Code:    "CHART003",
	}
	msgNothingToDraw = UserMessage{
		Message: "There are no values to draw",
		Action:  "Enter at least one non-zero number or pick another chart type",
		Code:    "CHART004",
	}
	msgOutOfRange = UserMessage{
		Message: "That row does not exist",
		Action:  "Reload the session and try the edit again",
		Code:    "EDIT001",
	}
	msgUnknownHeader = UserMessage{
		Message: "That column does not exist",
		Action:  "Reload the session and try the edit again",
		Code:    "EDIT002",
	}
	msgSessionNotFound = UserMessage{
		Message: "No data to display. Please upload a file first.",
		Action:  "The session may have expired. Upload the file again",
		Code:    "SES001",
	}
	msgTooManySessions = UserMessage{
		Message: "Too many charts are open on this server",
		Action:  "Close an existing session or try again later",
		Code:    "SES002",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgSuperseded = UserMessage{
		Message: "A newer upload replaced this one",
		Action:  "The most recent file is shown; upload again if that is not the one you wanted",
		Code:    "UPL003",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgMissingKey = UserMessage{
		Message: "API key required",
		Action:  "Send the key in the X-API-Key header",
		Code:    "AUTH001",
	}
	msgInvalidKey = UserMessage{
		Message: "Invalid API key",
		Action:  "Check the key and try again",
		Code:    "AUTH002",
	}
	msgAuditDisabled = UserMessage{
		Message: "History is not available on this server",
		Action:  "Ask an administrator to configure a database",
		Code:    "AUD001",
	}
	msgShuttingDown = UserMessage{
		Message: "The server is restarting",
		Action:  "Please try again in a few moments",
		Code:    "SRV001",
	}
	msgBadRequest = UserMessage{
		Message: "The request could not be understood",
		Action:  "Check the request fields and try again",
		Code:    "REQ001",
	}
)

// errorTarget matches a sentinel or typed error to a message.
type errorTarget struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[T error]() func(error) bool {
	return func(err error) bool {
		var t T
		return errors.As(err, &t)
	}
}

func parseReason(reason string) func(error) bool {
	return func(err error) bool {
		var pe *dataset.ParseError
		return errors.As(err, &pe) && strings.HasPrefix(pe.Reason, reason)
	}
}

// errorTargets is checked in order; the first match wins.
var errorTargets = []errorTarget{
	{is(ErrFileTooLarge), msgTooLarge},
	{is(ErrNoFile), msgNoFile},
	{is(dataset.ErrExtensionMismatch), msgWrongExtension},
	{parseReason(dataset.ReasonNoDataRows), msgNoRows},
	{parseReason(dataset.ReasonUndecoded), msgEncoding},
	{as[*dataset.ParseError](), msgUnreadable},
	{as[*chart.IneligibleChartKindError](), msgIneligible},
	{is(chart.ErrNoCategoricalAxis), msgNoAxis},
	{is(chart.ErrUnknownKind), msgUnknownSelection},
	{is(chart.ErrUnknownExportFormat), msgUnknownSelection},
	{is(render.ErrNothingToDraw), msgNothingToDraw},
	{as[*dataset.OutOfRangeError](), msgOutOfRange},
	{as[*dataset.UnknownHeaderError](), msgUnknownHeader},
	{is(ErrSessionNotFound), msgSessionNotFound},
	{is(ErrTooManySessions), msgTooManySessions},
	{is(ErrSuperseded), msgSuperseded},
	{is(ErrTooManyUploads), msgBusy},
	{is(ErrShuttingDown), msgShuttingDown},
	{is(ErrAuditDisabled), msgAuditDisabled},
	{is(ErrRateLimited), msgRateLimited},
	{is(ErrMissingAPIKey), msgMissingKey},
	{is(ErrInvalidAPIKey), msgInvalidKey},
	{is(ErrBadRequest), msgBadRequest},
	{is(context.Canceled), msgCancelled},
	{is(context.DeadlineExceeded), msgTimeout},
}

// errorPatterns covers errors that reach MapError without their type, for
// example from a wrapped library or a string-only error. Matched
// case-insensitively with strings.Contains.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"request body too large", msgTooLarge},
	{"file too large", msgTooLarge},
	{"no file provided", msgNoFile},
	{"too many uploads", msgBusy},
	{"rate limit", msgRateLimited},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Typed
// errors are matched before substring patterns. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, t := range errorTargets {
		if t.match(err) {
			return t.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps it for logging. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
