package api

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
)

// hijackRecorder is a ResponseRecorder that can be hijacked.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestStatusWriter_HijackPassesThrough(t *testing.T) {
	inner := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	sw := &statusWriter{ResponseWriter: inner, status: http.StatusOK}

	var w http.ResponseWriter = sw
	if _, ok := w.(http.Hijacker); !ok {
		t.Fatal("statusWriter does not implement http.Hijacker")
	}
	if _, _, err := http.NewResponseController(w).Hijack(); err != nil {
		t.Fatalf("Hijack() error = %v", err)
	}
	if !inner.hijacked {
		t.Error("underlying writer was not hijacked")
	}
	if !sw.hijacked || sw.status != http.StatusSwitchingProtocols {
		t.Errorf("statusWriter hijacked=%v status=%d, want true 101", sw.hijacked, sw.status)
	}
}

func TestStatusWriter_HijackUnsupported(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	if _, _, err := sw.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
	if sw.hijacked {
		t.Error("failed hijack marked the writer hijacked")
	}
}

func TestStatusWriter_RecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusAccepted)
	_, _ = sw.Write([]byte("hello"))

	if sw.status != http.StatusAccepted || sw.written != 5 {
		t.Errorf("status=%d written=%d, want 202 5", sw.status, sw.written)
	}
	if sw.Unwrap() != rec {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}

func TestRequestID_Propagated(t *testing.T) {
	srv := testServer(t, &mockSession{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}
