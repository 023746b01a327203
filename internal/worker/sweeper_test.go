package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okateva/resto/internal/usecase"
)

type sweepFacadeStub struct {
	fn    func(context.Context) (usecase.SweepResult, error)
	calls atomic.Int64
}

func (s *sweepFacadeStub) SweepAbandoned(ctx context.Context) (usecase.SweepResult, error) {
	s.calls.Add(1)
	if s.fn != nil {
		return s.fn(ctx)
	}
	return usecase.SweepResult{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSweeperRunsPeriodically(t *testing.T) {
	facade := &sweepFacadeStub{fn: func(context.Context) (usecase.SweepResult, error) {
		return usecase.SweepResult{Scanned: 1, Cancelled: 1}, nil
	}}
	sweeper := NewSweeper(facade, 10*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	sweeper.Stop()

	if facade.calls.Load() == 0 {
		t.Fatal("expected at least one sweep run")
	}
}

func TestSweeperStopTerminatesLoop(t *testing.T) {
	facade := &sweepFacadeStub{}
	sweeper := NewSweeper(facade, 5*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	sweeper.Stop()

	settled := facade.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if facade.calls.Load() != settled {
		t.Fatal("sweeper kept running after Stop")
	}
}

func TestSweeperSurvivesRunErrors(t *testing.T) {
	facade := &sweepFacadeStub{fn: func(context.Context) (usecase.SweepResult, error) {
		return usecase.SweepResult{}, errors.New("db down")
	}}
	sweeper := NewSweeper(facade, 5*time.Millisecond, testLogger())

	sweeper.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()

	if facade.calls.Load() < 2 {
		t.Fatalf("expected loop to continue after errors, got %d runs", facade.calls.Load())
	}
}

func TestNewSweeperDefaultsInterval(t *testing.T) {
	sweeper := NewSweeper(&sweepFacadeStub{}, 0, testLogger())
	if sweeper.interval != time.Minute {
		t.Fatalf("expected default interval, got %v", sweeper.interval)
	}
}

func TestSweeperStopWithoutStart(t *testing.T) {
	sweeper := NewSweeper(&sweepFacadeStub{}, time.Second, testLogger())
	sweeper.Stop()
}
