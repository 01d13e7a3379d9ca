// Package poll watches a generation record until it reaches a terminal
// status. Polling is the only notification mechanism: providers never push,
// so clients re-read the record on a fixed interval.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lookbook/internal/domain"
)

// ErrTimeout is reported when a watched record never reaches a terminal
// status within the configured maximum wait.
var ErrTimeout = errors.New("poll: timed out waiting for terminal status")

// DefaultInterval matches the UI's observed re-read cadence.
const DefaultInterval = 2 * time.Second

// Reader is the read side of the generation state store.
type Reader interface {
	GetByID(ctx context.Context, id string) (*domain.Expose, error)
}

// Poller repeatedly re-reads a record until its status is terminal, then
// invokes the completion callback exactly once.
type Poller struct {
	reader   Reader
	interval time.Duration
	maxWait  time.Duration
	logger   zerolog.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the re-read interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxWait bounds the total watch duration. Zero disables the bound;
// abandoned jobs are then the reaper's problem, not the poller's.
func WithMaxWait(d time.Duration) Option {
	return func(p *Poller) { p.maxWait = d }
}

func New(reader Reader, logger zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		reader:   reader,
		interval: DefaultInterval,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Watch polls the record until it is terminal, the context is cancelled, or
// the max wait elapses. done receives either the final record or an error,
// never both, and runs at most once. The returned stop function cancels the
// watch; no read is issued after cancellation.
func (p *Poller) Watch(ctx context.Context, id string, done func(*domain.Expose, error)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	finish := func(expose *domain.Expose, err error) {
		once.Do(func() { done(expose, err) })
	}

	go func() {
		defer cancel()
		var deadline <-chan time.Time
		if p.maxWait > 0 {
			timer := time.NewTimer(p.maxWait)
			defer timer.Stop()
			deadline = timer.C
		}
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			expose, err := p.reader.GetByID(ctx, id)
			switch {
			case err == nil && expose.Status.Terminal():
				finish(expose, nil)
				return
			case errors.Is(err, domain.ErrNotFound):
				finish(nil, err)
				return
			case errors.Is(err, context.Canceled):
				return
			case err != nil:
				// Transient read failure; keep polling.
				p.logger.Warn().Err(err).Str("expose_id", id).Msg("poll: read failed")
			}

			select {
			case <-ctx.Done():
				return
			case <-deadline:
				finish(nil, ErrTimeout)
				return
			case <-ticker.C:
			}
		}
	}()

	return cancel
}
