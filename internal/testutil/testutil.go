// Package testutil holds HTTP helpers shared by handler and routing tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
)

// DuneBook is a valid create payload used across tests.
var DuneBook = map[string]any{
	"title":         "Dune",
	"author":        "Frank Herbert",
	"publishedDate": "1965-08-01",
	"genre":         "Science Fiction",
}

// NewRequest builds a test request. A non-nil body is JSON encoded unless it
// is already a string, which is sent verbatim.
func NewRequest(method, path string, body any) *http.Request {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, _ := json.Marshal(b)
		reader = bytes.NewReader(encoded)
	}

	r := httptest.NewRequest(method, path, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r
}

// RecordResponse is a decoded view of a recorded response.
type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    []byte
	Body   map[string]any
}

// RecordHTTPResponse decodes w. Body is nil when the payload is not a JSON object.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	raw, _ := io.ReadAll(result.Body)

	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    raw,
		Body:   body,
	}
}

// Serve runs req through h and records the response.
func Serve(h http.Handler, req *http.Request) RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return RecordHTTPResponse(w)
}
