package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/attune/internal/httpclient"
	"github.com/crimson-sun/attune/internal/model"
	"github.com/crimson-sun/attune/internal/output"
)

func testAnalysis(id string) model.Analysis {
	return model.Analysis{
		ID:        id,
		Timestamp: time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC),
		Text:      model.Estimate{Label: model.Sad, Confidence: 0.7},
		Final:     model.Estimate{Label: model.Sad, Confidence: 0.7},
		Rule:      "confidence",
		Recommendation: model.Recommendation{
			Emotion: model.Sad, Confidence: 0.7, Level: model.LevelModerate,
			Tasks: []string{"Light administrative tasks"},
		},
	}
}

// collector records every batch posted to it.
type collector struct {
	mu      sync.Mutex
	batches [][]model.Analysis
}

func (c *collector) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var batch []model.Analysis
	json.Unmarshal(body, &batch)
	c.mu.Lock()
	c.batches = append(c.batches, batch)
	c.mu.Unlock()
	w.WriteHeader(200)
}

func (c *collector) snapshot() [][]model.Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]model.Analysis(nil), c.batches...)
}

func TestBatchFlushAtBatchSize(t *testing.T) {
	var c collector
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(3), WithFlushInterval(10*time.Second))
	defer out.Close()

	for _, id := range []string{"a", "b", "c"} {
		if err := out.Write(context.Background(), testAnalysis(id)); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}

	got := c.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(got[0]))
	}
	if got[0][2].ID != "c" {
		t.Errorf("batch order: last id = %q, want c", got[0][2].ID)
	}
}

func TestTimerFlushBeforeBatchSize(t *testing.T) {
	var c collector
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(100*time.Millisecond))
	defer out.Close()

	out.Write(context.Background(), testAnalysis("timer"))

	// Wait for the timer to fire.
	time.Sleep(300 * time.Millisecond)

	got := c.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 timer-triggered batch, got %d", len(got))
	}
	if len(got[0]) != 1 {
		t.Errorf("batch size = %d, want 1", len(got[0]))
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(500)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithBackoff(10*time.Millisecond))
	if err := out.Write(context.Background(), testAnalysis("retry")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestNoRetryOn4xx(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(400)
	}))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1))
	err := out.Write(context.Background(), testAnalysis("client-error"))

	var apiErr *httpclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Fatalf("expected APIError 400, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected exactly 1 attempt for 4xx, got %d", attempts.Load())
	}
}

func TestCustomHeaders(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-Custom-Auth")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	out := New(srv.URL,
		WithBatchSize(1),
		WithHeaders(map[string]string{"X-Custom-Auth": "secret123"}),
	)
	out.Write(context.Background(), testAnalysis("headers"))

	if gotAuth != "secret123" {
		t.Errorf("custom header = %q, want secret123", gotAuth)
	}
}

func TestMinimalVerbosity(t *testing.T) {
	var c collector
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(1), WithVerbosity(output.Minimal))
	out.Write(context.Background(), testAnalysis("min"))

	got := c.snapshot()
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("unexpected batches: %v", got)
	}
	if got[0][0].Rule != "" || got[0][0].Text != (model.Estimate{}) {
		t.Errorf("minimal batch kept details: %+v", got[0][0])
	}
}

func TestTimerFlushErrorCallbackInvoked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
	}))
	defer srv.Close()

	var errCount atomic.Int64
	out := New(srv.URL,
		WithBatchSize(100),
		WithFlushInterval(50*time.Millisecond),
		WithOnError(func(err error) { errCount.Add(1) }),
	)

	out.Write(context.Background(), testAnalysis("timer-error"))

	// Wait for timer-triggered flush + HTTP round-trip.
	time.Sleep(300 * time.Millisecond)

	if errCount.Load() != 1 {
		t.Errorf("expected error callback called 1 time, got %d", errCount.Load())
	}

	out.Close()
}

func TestCloseFlushesRemaining(t *testing.T) {
	var c collector
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	out := New(srv.URL, WithBatchSize(100), WithFlushInterval(10*time.Second))

	out.Write(context.Background(), testAnalysis("one"))
	out.Write(context.Background(), testAnalysis("two"))

	if err := out.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	got := c.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch on Close, got %d", len(got))
	}
	if len(got[0]) != 2 {
		t.Errorf("batch size = %d, want 2", len(got[0]))
	}
}
