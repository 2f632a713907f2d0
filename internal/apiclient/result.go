package apiclient

import (
	"encoding/json"
	"strings"
)

// Result is the normalized outcome of one API call. Callers never inspect
// raw server payloads; Reason is always human readable.
type Result[T any] struct {
	OK     bool
	Value  T
	Reason string
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// AuthRequired is set when no token is available or the server
	// rejected it.
	AuthRequired bool
	// Err carries the transport or decode error for logging.
	Err error
}

func ok[T any](v T, status int) Result[T] {
	return Result[T]{OK: true, Value: v, Status: status}
}

func fail[T any](reason string, status int, err error) Result[T] {
	return Result[T]{Reason: reason, Status: status, Err: err}
}

// Map converts a successful value while keeping failure details.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	out := Result[U]{OK: r.OK, Reason: r.Reason, Status: r.Status, AuthRequired: r.AuthRequired, Err: r.Err}
	if r.OK {
		out.Value = f(r.Value)
	}
	return out
}

// reasonFromBody picks the server's "error" field, then "message", then
// fallback.
func reasonFromBody(body []byte, fallback string) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	if s := rawString(payload.Error); s != "" {
		return s
	}
	if s := rawString(payload.Message); s != "" {
		return s
	}
	return fallback
}

// rawString returns the value of a JSON string, or of a nested
// {"message": "..."} object.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return strings.TrimSpace(nested.Message)
	}
	return ""
}
