package log

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

// RequestIDHeader carries the per-request identifier set by the REST server
const RequestIDHeader = "X-Request-ID"

// HTTPLogEntry represents an HTTP request/response log entry
type HTTPLogEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	Status     int           `json:"status"`
	Duration   time.Duration `json:"duration"`
	Size       int           `json:"size"`
	RemoteAddr string        `json:"remote_addr"`
	UserAgent  string        `json:"user_agent"`
	RequestID  string        `json:"request_id,omitempty"`
}

// LogHTTPRequest writes an access log entry. 5xx responses are logged at error level.
func LogHTTPRequest(e HTTPLogEntry) {
	fields := []interface{}{
		"method", e.Method,
		"path", e.Path,
		"status", e.Status,
		"duration_ms", e.Duration.Milliseconds(),
		"size", e.Size,
		"remote_addr", e.RemoteAddr,
		"user_agent", e.UserAgent,
	}
	if e.RequestID != "" {
		fields = append(fields, "request_id", e.RequestID)
	}

	if e.Status >= http.StatusInternalServerError {
		Errorw("http request", fields...)
		return
	}
	Infow("http request", fields...)
}

// HTTPMiddleware wraps h so every request is written to the access log
func HTTPMiddleware(h http.Handler) http.Handler {
	return handlers.CustomLoggingHandler(io.Discard, h, func(_ io.Writer, p handlers.LogFormatterParams) {
		LogHTTPRequest(HTTPLogEntry{
			Timestamp:  p.TimeStamp,
			Method:     p.Request.Method,
			Path:       p.URL.Path,
			Status:     p.StatusCode,
			Duration:   time.Since(p.TimeStamp),
			Size:       p.Size,
			RemoteAddr: p.Request.RemoteAddr,
			UserAgent:  p.Request.UserAgent(),
			RequestID:  p.Request.Header.Get(RequestIDHeader),
		})
	})
}
