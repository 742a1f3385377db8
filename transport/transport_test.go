package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBlocking_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("expected X-Test=yes, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr, err := NewBlocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	res, err := tr.RoundTrip(context.Background(), &Request{
		Method:  http.MethodGet,
		URL:     srv.URL + "/ping",
		Headers: map[string]string{"X-Test": "yes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != 200 {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
	if !res.IsSuccess() {
		t.Error("expected IsSuccess=true")
	}
	if !strings.Contains(string(res.Body), "ok") {
		t.Errorf("unexpected body: %s", res.Body)
	}
	if res.Headers["Content-Type"] != "application/json" {
		t.Errorf("unexpected headers: %v", res.Headers)
	}
}

func TestBlocking_RoundTrip_ErrorStatusIsNotTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tr, err := NewBlocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	res, err := tr.RoundTrip(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("HTTP 404 must not be a transport error, got %v", err)
	}
	if !res.IsError() {
		t.Error("expected IsError=true")
	}
}

func TestBlocking_RoundTrip_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	tr, err := NewBlocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = tr.RoundTrip(ctx, &Request{Method: http.MethodGet, URL: srv.URL})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected IsTimeout=true, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("timeouts should be retryable")
	}
}

func TestBlocking_RoundTrip_ConnectionRefused(t *testing.T) {
	tr, err := NewBlocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	_, err = tr.RoundTrip(context.Background(), &Request{
		Method: http.MethodGet,
		URL:    "http://127.0.0.1:1/unreachable",
	})
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !IsConnection(err) {
		t.Errorf("expected IsConnection=true, got %v", err)
	}
}

func TestBlocking_Close_RejectsFurtherCalls(t *testing.T) {
	tr, err := NewBlocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close must be idempotent, got %v", err)
	}

	_, err = tr.RoundTrip(context.Background(), &Request{Method: http.MethodGet, URL: "http://example.com"})
	if !IsClosed(err) {
		t.Errorf("expected IsClosed=true, got %v", err)
	}
}

func TestNonblocking_Submit_ConcurrentCompletion(t *testing.T) {
	var inFlight atomic.Int32
	var peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	tr, err := NewNonblocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	ctx := context.Background()
	var handles []*Pending
	for i := 0; i < 3; i++ {
		handles = append(handles, tr.Submit(ctx, &Request{Method: http.MethodGet, URL: srv.URL}))
	}
	for i, p := range handles {
		res, err := p.Wait(ctx)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		if res.StatusCode != 200 {
			t.Errorf("request %d: expected 200, got %d", i, res.StatusCode)
		}
	}
	if peak.Load() < 2 {
		t.Errorf("expected overlapping requests, peak was %d", peak.Load())
	}
}

func TestNonblocking_Wait_Repeatable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	tr, err := NewNonblocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer tr.Close()

	p := tr.Submit(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	first, err1 := p.Wait(context.Background())
	second, err2 := p.Wait(context.Background())
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Error("every Wait must observe the same outcome")
	}
}

func TestNonblocking_Close_CancelsInFlight(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tr, err := NewNonblocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := tr.Submit(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if err := tr.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.Wait(context.Background())
	if err == nil {
		t.Fatal("expected cancellation after Close")
	}
	if !IsCanceled(err) {
		t.Errorf("expected IsCanceled=true, got %v", err)
	}
}

func TestNonblocking_CompletedResultSurvivesClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`done`))
	}))
	defer srv.Close()

	tr, err := NewNonblocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := tr.Submit(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	res, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Body) != "done" {
		t.Errorf("completed result must stay readable after Close, got %s", res.Body)
	}
}

func TestNonblocking_SubmitAfterClose(t *testing.T) {
	tr, err := NewNonblocking(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := tr.Submit(context.Background(), &Request{Method: http.MethodGet, URL: "http://example.com"})
	if !p.Done() {
		t.Fatal("submit after close must resolve immediately")
	}
	_, err = p.Wait(context.Background())
	if !IsClosed(err) {
		t.Errorf("expected IsClosed=true, got %v", err)
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	cfg := &TLSConfig{CertFile: "cert.pem"}
	if err := cfg.Validate(); err == nil {
		t.Error("cert without key must fail validation")
	}
	cfg = &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTLSConfig_Build_Empty(t *testing.T) {
	cfg := &TLSConfig{}
	built, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if built != nil {
		t.Error("empty config should build to nil")
	}
}
