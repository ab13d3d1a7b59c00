package cache

import (
	"net/http"
	"time"
)

// Entry represents a cached origin response.
type Entry struct {
	// Data is the response body
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response
	StatusCode int `json:"status_code"`

	// Headers are the response headers
	Headers http.Header `json:"headers"`

	// CachedAt is when we captured this response
	CachedAt time.Time `json:"cached_at"`
}

// Size returns the approximate stored size of the entry in bytes.
// Only the body is counted; header overhead is negligible for quota purposes.
func (e *Entry) Size() int {
	return len(e.Data)
}

// ContentType returns the entry's Content-Type header, if any.
func (e *Entry) ContentType() string {
	return e.Headers.Get("Content-Type")
}
