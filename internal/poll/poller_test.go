package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
)

// sequenceReader serves a scripted status per read and then repeats the
// last entry forever.
type sequenceReader struct {
	mu       sync.Mutex
	statuses []domain.GenerationStatus
	err      error
	reads    int
}

func (r *sequenceReader) GetByID(_ context.Context, id string) (*domain.Expose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	idx := r.reads - 1
	if idx >= len(r.statuses) {
		idx = len(r.statuses) - 1
	}
	return &domain.Expose{ID: id, Status: r.statuses[idx]}, nil
}

func (r *sequenceReader) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type watchResult struct {
	expose *domain.Expose
	err    error
}

func TestWatchStopsAtTerminalStatus(t *testing.T) {
	reader := &sequenceReader{statuses: []domain.GenerationStatus{
		domain.StatusProcessing,
		domain.StatusProcessing,
		domain.StatusCompleted,
	}}
	p := New(reader, zerolog.Nop(), WithInterval(5*time.Millisecond))

	results := make(chan watchResult, 4)
	p.Watch(context.Background(), "e1", func(expose *domain.Expose, err error) {
		results <- watchResult{expose: expose, err: err}
	})

	select {
	case res := <-results:
		if res.err != nil {
			t.Fatalf("callback error = %v", res.err)
		}
		if res.expose.Status != domain.StatusCompleted {
			t.Fatalf("status = %q, want completed", res.expose.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never invoked")
	}

	// The record was terminal on the third read; no further callback may
	// arrive.
	select {
	case <-results:
		t.Fatalf("callback invoked more than once")
	case <-time.After(50 * time.Millisecond):
	}
	if got := reader.readCount(); got != 3 {
		t.Fatalf("reads = %d, want 3", got)
	}
}

func TestWatchReportsMissingRecord(t *testing.T) {
	reader := &sequenceReader{err: domain.ErrNotFound}
	p := New(reader, zerolog.Nop(), WithInterval(5*time.Millisecond))

	results := make(chan watchResult, 1)
	p.Watch(context.Background(), "missing", func(expose *domain.Expose, err error) {
		results <- watchResult{expose: expose, err: err}
	})

	select {
	case res := <-results:
		if !errors.Is(res.err, domain.ErrNotFound) {
			t.Fatalf("callback error = %v, want ErrNotFound", res.err)
		}
		if res.expose != nil {
			t.Fatalf("expose = %+v, want nil on error", res.expose)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never invoked")
	}
}

func TestWatchRetriesTransientReadFailures(t *testing.T) {
	reader := &transientReader{failures: 2}
	p := New(reader, zerolog.Nop(), WithInterval(5*time.Millisecond))

	results := make(chan watchResult, 1)
	p.Watch(context.Background(), "e1", func(expose *domain.Expose, err error) {
		results <- watchResult{expose: expose, err: err}
	})

	select {
	case res := <-results:
		if res.err != nil {
			t.Fatalf("callback error = %v, want success after retries", res.err)
		}
		if res.expose.Status != domain.StatusCompleted {
			t.Fatalf("status = %q, want completed", res.expose.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never invoked")
	}
}

// transientReader fails the first n reads, then returns a completed record.
type transientReader struct {
	mu       sync.Mutex
	failures int
	reads    int
}

func (r *transientReader) GetByID(_ context.Context, id string) (*domain.Expose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.reads <= r.failures {
		return nil, errors.New("connection reset")
	}
	return &domain.Expose{ID: id, Status: domain.StatusCompleted}, nil
}

func TestWatchStopCancelsWithoutCallback(t *testing.T) {
	reader := &sequenceReader{statuses: []domain.GenerationStatus{domain.StatusProcessing}}
	p := New(reader, zerolog.Nop(), WithInterval(5*time.Millisecond))

	results := make(chan watchResult, 1)
	stop := p.Watch(context.Background(), "e1", func(expose *domain.Expose, err error) {
		results <- watchResult{expose: expose, err: err}
	})

	time.Sleep(20 * time.Millisecond)
	stop()
	readsAtStop := reader.readCount()
	time.Sleep(50 * time.Millisecond)

	select {
	case res := <-results:
		t.Fatalf("callback invoked after stop: %+v", res)
	default:
	}
	// One read may have been in flight when stop was called.
	if got := reader.readCount(); got > readsAtStop+1 {
		t.Fatalf("reads after stop = %d, was %d at stop", got, readsAtStop)
	}
}

func TestWatchTimesOut(t *testing.T) {
	reader := &sequenceReader{statuses: []domain.GenerationStatus{domain.StatusProcessing}}
	p := New(reader, zerolog.Nop(), WithInterval(5*time.Millisecond), WithMaxWait(30*time.Millisecond))

	results := make(chan watchResult, 1)
	p.Watch(context.Background(), "e1", func(expose *domain.Expose, err error) {
		results <- watchResult{expose: expose, err: err}
	})

	select {
	case res := <-results:
		if !errors.Is(res.err, ErrTimeout) {
			t.Fatalf("callback error = %v, want ErrTimeout", res.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("callback never invoked")
	}
}
