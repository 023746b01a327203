package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/okateva/resto/internal/usecase"
)

var (
	sweepRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_sweeper_runs_total",
		Help: "Total number of abandoned-order sweep runs",
	})
	sweepCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_sweeper_cancelled_total",
		Help: "Total number of abandoned orders cancelled",
	})
	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resto_sweeper_failures_total",
		Help: "Total number of per-order sweep failures",
	})
)

// SweepFacade exposes the subset of application functionality required by
// the sweeper.
type SweepFacade interface {
	SweepAbandoned(ctx context.Context) (usecase.SweepResult, error)
}

// Sweeper periodically cancels stale unpaid orders in the background.
type Sweeper struct {
	facade   SweepFacade
	interval time.Duration
	logger   *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSweeper constructs the background sweeper.
func NewSweeper(facade SweepFacade, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{facade: facade, interval: interval, logger: logger}
}

// Start launches background sweeping.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(runCtx)
}

// Stop waits for the current run to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	sweepRuns.Inc()
	result, err := s.facade.SweepAbandoned(ctx)
	if err != nil {
		s.logger.Error("sweep run failed", slog.String("error", err.Error()))
		return
	}
	sweepCancelled.Add(float64(result.Cancelled))
	sweepFailures.Add(float64(result.Failed))
	if result.Scanned > 0 {
		s.logger.Info("sweep run finished",
			slog.Int("scanned", result.Scanned),
			slog.Int("cancelled", result.Cancelled),
			slog.Int("failed", result.Failed),
		)
	}
}
