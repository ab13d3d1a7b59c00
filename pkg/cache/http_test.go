package cache

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseToEntry(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Content-Type": []string{"text/html"},
		},
		Body: io.NopCloser(bytes.NewReader([]byte("<html>OK</html>"))),
	}

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry failed: %v", err)
	}

	if string(entry.Data) != "<html>OK</html>" {
		t.Errorf("Data = %q, want %q", entry.Data, "<html>OK</html>")
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", entry.StatusCode, http.StatusOK)
	}
	if entry.ContentType() != "text/html" {
		t.Errorf("ContentType() = %q, want %q", entry.ContentType(), "text/html")
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}

	// Body must be restored so the caller can still stream it
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(body) != "<html>OK</html>" {
		t.Errorf("restored body = %q, want %q", body, "<html>OK</html>")
	}
}

func TestResponseToEntry_NilResponse(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &Entry{
		Data:       []byte("offline page"),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"text/html"}},
	}

	resp := EntryToResponse(entry)
	if resp == nil {
		t.Fatal("EntryToResponse returned nil")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "offline page" {
		t.Errorf("body = %q, want %q", body, "offline page")
	}
}

func TestEntryToResponse_Nil(t *testing.T) {
	if resp := EntryToResponse(nil); resp != nil {
		t.Error("expected nil response for nil entry")
	}
}

func TestWriteEntry(t *testing.T) {
	entry := &Entry{
		Data:       []byte("hello"),
		StatusCode: http.StatusServiceUnavailable,
		Headers:    http.Header{"Content-Type": []string{"text/plain"}},
	}

	rec := httptest.NewRecorder()
	if err := WriteEntry(rec, entry); err != nil {
		t.Fatalf("WriteEntry failed: %v", err)
	}

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if rec.Body.String() != "hello" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "hello")
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %q, want %q", rec.Header().Get("Content-Type"), "text/plain")
	}
}
