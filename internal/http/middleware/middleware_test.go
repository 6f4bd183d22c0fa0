package middleware

import (
	"bytes"
	"context"
	"expvar"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Krish123-lang/movies-api/internal/config"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	w.Write([]byte("ok"))
})

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("Connection") != "close" {
		t.Fatal("missing Connection: close")
	}
}

func TestLogRequests(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	LogRequests(log, okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/", nil))

	line := buf.String()
	for _, want := range []string{"method=GET", "uri=/movies/", "status=418", "bytes=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestMetrics(t *testing.T) {
	before := totalRequestsReceived.Value()

	rec := httptest.NewRecorder()
	Metrics(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := totalRequestsReceived.Value(); got != before+1 {
		t.Fatalf("requests received = %d, want %d", got, before+1)
	}
	if v, ok := totalResponsesSentByStatus.Get("418").(*expvar.Int); !ok || v.Value() < 1 {
		t.Fatalf("status 418 counter = %v", totalResponsesSentByStatus.Get("418"))
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.Limiter{Enabled: true, RPS: 1, Burst: 2})
	h := rl.Limit(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusTeapot || codes[1] != http.StatusTeapot {
		t.Fatalf("first two codes = %v, want allowed", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third code = %d, want 429", codes[2])
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Fatalf("other client code = %d, want allowed", rec.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := NewRateLimiter(config.Limiter{Enabled: false, RPS: 1, Burst: 1}).Limit(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("request %d code = %d, want allowed", i, rec.Code)
		}
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(config.Limiter{Enabled: true, RPS: 1, Burst: 1})
	rl.allow("10.0.0.1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.Prune(ctx, time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for {
		rl.mu.Lock()
		n := len(rl.clients)
		rl.mu.Unlock()
		if n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("idle client was never pruned")
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORS{TrustedOrigins: []string{"http://localhost:4200"}}, okHandler)

	t.Run("trusted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/movies/", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
			t.Fatalf("allow origin = %q", got)
		}
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d, want pass-through", rec.Code)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/movies/1/", nil)
		req.Header.Set("Origin", "http://localhost:4200")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PUT") {
			t.Fatalf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
		}
	})

	t.Run("untrusted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/movies/", nil)
		req.Header.Set("Origin", "http://evil.test")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow origin = %q, want none", got)
		}
	})
}
