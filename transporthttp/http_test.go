package transporthttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orrery/resilient/backoff"
	"github.com/orrery/resilient/engine"
)

func mustEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	eng, err := engine.New(opts...)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng
}

func TestDo_RetriesOn503ThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	eng := mustEngine(t, engine.WithRetry(engine.RetryConfig{MaxRetries: 5, Strategy: backoff.Fixed(0)}))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	resp, err := Do(context.Background(), eng, srv.Client(), req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestDo_NonRetryable4xxFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	eng := mustEngine(t, engine.WithRetry(engine.RetryConfig{MaxRetries: 5, Strategy: backoff.Fixed(0)}))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)

	_, err := Do(context.Background(), eng, srv.Client(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (400 must not retry)", calls.Load())
	}
}

func TestDo_BodyReplayedOnEachAttempt(t *testing.T) {
	var calls atomic.Int32
	var lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		lastBody = string(buf[:n])
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	eng := mustEngine(t, engine.WithRetry(engine.RetryConfig{MaxRetries: 3, Strategy: backoff.Fixed(0)}))
	req, _ := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("payload"))
	req.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("payload")), nil }

	resp, err := Do(context.Background(), eng, srv.Client(), req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if lastBody != "payload" {
		t.Errorf("lastBody = %q, want %q", lastBody, "payload")
	}
}

func TestDo_NonReplayableBodyRejected(t *testing.T) {
	eng := mustEngine(t)
	req, _ := http.NewRequest(http.MethodPost, "http://example.invalid", strings.NewReader("x"))
	req.GetBody = nil

	_, err := Do(context.Background(), eng, http.DefaultClient, req)
	if err == nil {
		t.Fatal("expected rejection for non-replayable body")
	}
}

func TestStatusError_RetryAfterSeconds(t *testing.T) {
	e := &StatusError{Code: 429, Header: http.Header{"Retry-After": []string{"2"}}}
	d, ok := e.RetryAfter()
	if !ok || d != 2*time.Second {
		t.Errorf("RetryAfter = %v, %v, want 2s, true", d, ok)
	}
}

func TestStatusError_NoRetryAfterHeader(t *testing.T) {
	e := &StatusError{Code: 500}
	_, ok := e.RetryAfter()
	if ok {
		t.Error("expected no Retry-After")
	}
}
