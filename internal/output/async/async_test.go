package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/crimson-sun/attune/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockOutput struct {
	mu     sync.Mutex
	got    []model.Analysis
	closed bool
	err    error         // if set, Write returns this
	delay  time.Duration // if >0, Write sleeps first
}

func (m *mockOutput) Write(_ context.Context, a model.Analysis) error {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	m.got = append(m.got, a)
	m.mu.Unlock()
	return m.err
}

func (m *mockOutput) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *mockOutput) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.got)
}

func testAnalysis(id string) model.Analysis {
	return model.Analysis{
		ID:    id,
		Final: model.Estimate{Label: model.Neutral, Confidence: 0.5},
	}
}

func TestAnalysesFlowThrough(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(16))

	for i := 0; i < 10; i++ {
		if err := a.Write(context.Background(), testAnalysis("flow")); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if inner.count() != 10 {
		t.Errorf("got %d analyses, want 10", inner.count())
	}
	if !inner.closed {
		t.Error("inner output not closed")
	}
}

func TestBackpressureBlocks(t *testing.T) {
	inner := &mockOutput{delay: 50 * time.Millisecond}
	a := New(inner, WithBufferSize(1))

	a.Write(context.Background(), testAnalysis("first"))

	done := make(chan struct{})
	go func() {
		a.Write(context.Background(), testAnalysis("second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Write blocked indefinitely (expected eventual unblock via drain)")
	}

	a.Close()
}

func TestBlockedWriteHonorsContext(t *testing.T) {
	release := make(chan struct{})
	inner := &blockingOutput{release: release, started: make(chan struct{})}
	a := New(inner, WithBufferSize(1))

	// One analysis is held by the drain goroutine, one fills the buffer.
	a.Write(context.Background(), testAnalysis("held"))
	a.Write(context.Background(), testAnalysis("buffered"))
	<-inner.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := a.Write(ctx, testAnalysis("blocked")); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Write error = %v, want deadline exceeded", err)
	}

	close(release)
	a.Close()
}

type blockingOutput struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingOutput) Write(context.Context, model.Analysis) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func (b *blockingOutput) Close() error { return nil }

func TestDropOnFull(t *testing.T) {
	inner := &mockOutput{delay: 100 * time.Millisecond}
	a := New(inner, WithBufferSize(1), WithDropOnFull())

	for i := 0; i < 20; i++ {
		a.Write(context.Background(), testAnalysis("burst"))
	}
	a.Close()

	if inner.count() == 20 {
		t.Error("expected some analyses to be dropped in drop-on-full mode")
	}
	if inner.count() == 0 {
		t.Error("expected at least some analyses to be delivered")
	}
}

func TestCloseDrainsRemaining(t *testing.T) {
	inner := &mockOutput{}
	a := New(inner, WithBufferSize(100))

	for i := 0; i < 50; i++ {
		a.Write(context.Background(), testAnalysis("drain"))
	}
	a.Close()

	if inner.count() != 50 {
		t.Errorf("after Close, got %d analyses, want 50 (drain incomplete)", inner.count())
	}
}

func TestErrorCallbackInvoked(t *testing.T) {
	inner := &mockOutput{err: errors.New("write failed")}
	var errorCount atomic.Int64
	a := New(inner, WithBufferSize(16), WithOnError(func(err error) {
		errorCount.Add(1)
	}))

	for i := 0; i < 5; i++ {
		a.Write(context.Background(), testAnalysis("failing"))
	}
	a.Close()

	if errorCount.Load() != 5 {
		t.Errorf("error callback called %d times, want 5", errorCount.Load())
	}
}

func TestWriteAfterClose(t *testing.T) {
	a := New(&mockOutput{}, WithBufferSize(4))
	a.Close()

	if err := a.Write(context.Background(), testAnalysis("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("Write after Close = %v, want ErrClosed", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	a := New(&mockOutput{}, WithBufferSize(16))
	a.Write(context.Background(), testAnalysis("idempotent"))

	if err := a.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}
