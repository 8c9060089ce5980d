package transport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewHandler_Endpoints(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mcp:" + r.Method))
	})
	h := NewHandler(HandlerConfig{MCP: mcpHandler, MetricsPath: "/metrics", Logger: quietLogger()})

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{"GET", "/healthz", http.StatusOK, "ok"},
		{"POST", "/mcp", http.StatusOK, "mcp:POST"},
		{"DELETE", "/mcp", http.StatusOK, "mcp:DELETE"},
		{"GET", "/metrics", http.StatusOK, "xsearch_http_requests_total"},
		{"GET", "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body missing %q: %s", tt.wantBody, rec.Body.String())
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("expected X-Request-ID response header")
			}
		})
	}
}

func TestNewHandler_MetricsDisabled(t *testing.T) {
	h := NewHandler(HandlerConfig{Logger: quietLogger()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServerServesAndShutsDown(t *testing.T) {
	var logs lockedBuffer
	h := NewHandler(HandlerConfig{Logger: quietLogger()})
	srv := NewServer(h, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))), WithShutdownTimeout(time.Second))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ServeOn(ctx, ln) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/healthz")
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeOn() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	for _, msg := range []string{"server starting", "server stopped"} {
		if !strings.Contains(logs.String(), msg) {
			t.Errorf("server log missing %q:\n%s", msg, logs.String())
		}
	}
}

func TestNewServer_NilLoggerFallsBack(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), WithLogger(nil))
	if srv.config.Logger == nil {
		t.Fatal("expected default logger")
	}
}

// lockedBuffer is a bytes.Buffer safe for concurrent log writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
