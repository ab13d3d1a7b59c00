package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry converts an HTTP response to a cache Entry.
// It reads the response body and restores it afterwards so the caller can
// still stream the response to the requester.
func ResponseToEntry(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	// Read body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Entry{
		Data:       body,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   time.Now(),
	}, nil
}

// EntryToResponse converts a cache Entry back to an HTTP response.
func EntryToResponse(entry *Entry) *http.Response {
	if entry == nil {
		return nil
	}

	return &http.Response{
		StatusCode: entry.StatusCode,
		Status:     http.StatusText(entry.StatusCode),
		Header:     entry.Headers.Clone(),
		Body:       io.NopCloser(bytes.NewReader(entry.Data)),
	}
}

// WriteEntry writes a cache Entry to an http.ResponseWriter.
func WriteEntry(w http.ResponseWriter, entry *Entry) error {
	for key, values := range entry.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(entry.StatusCode)
	if _, err := w.Write(entry.Data); err != nil {
		return fmt.Errorf("write cached response: %w", err)
	}
	return nil
}
