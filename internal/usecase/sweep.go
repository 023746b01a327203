package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/domain/repository"
)

// SweepResult summarizes one sweeper run.
type SweepResult struct {
	Scanned   int
	Cancelled int
	Failed    int
}

// SweepUseCase cancels stale unpaid orders and reverses their side effects.
// Runs are idempotent and safe to overlap with each other and with payment
// reconciliation: the cancel is a conditional write that loses gracefully
// to a payment completing in between.
type SweepUseCase struct {
	orders       repository.OrderRepository
	notifier     Notifier
	logger       *slog.Logger
	abandonAfter time.Duration
	batchSize    int
}

// NewSweepUseCase constructs SweepUseCase.
func NewSweepUseCase(orders repository.OrderRepository, notifier Notifier, logger *slog.Logger, abandonAfter time.Duration, batchSize int) *SweepUseCase {
	if abandonAfter <= 0 {
		abandonAfter = 15 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SweepUseCase{orders: orders, notifier: notifier, logger: logger, abandonAfter: abandonAfter, batchSize: batchSize}
}

// SweepAbandoned cancels PENDING/PENDING orders older than the threshold.
// A failure on one order is counted and the rest of the batch continues.
func (u *SweepUseCase) SweepAbandoned(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	cutoff := time.Now().Add(-u.abandonAfter)

	stale, err := u.orders.SelectAbandoned(ctx, cutoff, u.batchSize)
	if err != nil {
		return result, err
	}
	result.Scanned = len(stale)

	for _, order := range stale {
		applied, err := u.orders.CancelAbandoned(ctx, order.ID, cutoff, "payment not completed within window")
		if err != nil {
			result.Failed++
			u.logger.Error("sweep cancel failed",
				slog.Int64("order_id", order.ID),
				slog.String("order_number", order.Number),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !applied {
			// Paid or cancelled between select and cancel.
			continue
		}
		result.Cancelled++
		if err := u.notifier.OrderStatusChanged(ctx, order.ID, order.Number, model.OrderStatusCancelled); err != nil {
			u.logger.Error("status notification failed",
				slog.Int64("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}
