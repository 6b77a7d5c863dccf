// Package responseformat writes API responses as JSON or MessagePack.
package responseformat

import (
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Content types written by the formatter
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgPack = "application/x-msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// WantsMsgPack reports whether the request asked for MessagePack with format=msgpack
func WantsMsgPack(req *http.Request) bool {
	return req.URL.Query().Get("format") == "msgpack"
}

// WriteResponse writes data with the given status code. JSON is the default format;
// MessagePack is used when format=msgpack is specified.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	if WantsMsgPack(req) {
		w.Header().Set("Content-Type", ContentTypeMsgPack)
		w.WriteHeader(status)
		encoder := msgpack.NewEncoder(w)
		encoder.SetCustomStructTag("json") // Use json tags for MessagePack
		return encoder.Encode(data)
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes an ErrorBody with the given status code
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message, requestID string) error {
	return f.WriteResponse(w, req, status, ErrorBody{Error: message, RequestID: requestID})
}
