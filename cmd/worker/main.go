// The worker is the reaper for orphaned generation attempts: a crash
// between the processing write and the terminal write would otherwise
// leave a record in processing forever, and polling clients would never
// stop. It periodically flips stale processing records to error.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lookbook/internal/adapter/repo"
	"lookbook/internal/domain"
	"lookbook/internal/infra"
)

const staleMessage = "generation timed out"

type reaper struct {
	exposes domain.ExposeRepository
	logger  infra.Logger
	maxAge  time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	r := &reaper{
		exposes: repo.NewExposeRepository(pool),
		logger:  logger,
		maxAge:  cfg.ProcessingTimeout,
	}

	if err := r.run(ctx, cfg.ReaperInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (r *reaper) run(ctx context.Context, interval time.Duration) error {
	r.logger.Info().Dur("max_age", r.maxAge).Msg("worker: started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		count, err := r.exposes.MarkStaleProcessing(ctx, r.maxAge, staleMessage)
		if err != nil {
			r.logger.Error().Err(err).Msg("worker: reap failed")
			continue
		}
		if count > 0 {
			r.logger.Warn().Int("reaped", count).Msg("worker: marked stale attempts as error")
		}
	}
}
