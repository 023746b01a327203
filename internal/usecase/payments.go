package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/okateva/resto/internal/adapter/payment"
	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/domain/repository"
)

// PaymentUseCase coordinates charge creation with the provider adapters and
// converges order + payment state from provider callbacks. Reconciliation
// is idempotent under at-least-once webhook delivery: every state-changing
// branch is gated on the order's current payment status inside the
// transaction that writes the new one.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	adapters payment.Registry
	notifier Notifier
	logger   *slog.Logger
	currency string
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, adapters payment.Registry, notifier Notifier, logger *slog.Logger, currency string) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, adapters: adapters, notifier: notifier, logger: logger, currency: currency}
}

// CreateCharge invokes the provider adapter for an order the caller owns.
// A provider failure leaves the order PENDING/PENDING and retryable.
func (u *PaymentUseCase) CreateCharge(ctx context.Context, provider payment.Provider, orderID, callerID int64, staff bool) (*payment.ChargeResult, error) {
	adapter, ok := u.adapters[provider]
	if !ok {
		return nil, domainErrors.ValidationError{Field: "provider", Reason: "unknown payment provider"}
	}

	order, _, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && order.CustomerID != callerID {
		return nil, domainErrors.ErrForbidden
	}
	if order.PaymentStatus == model.PaymentStatusCompleted || order.PaymentStatus == model.PaymentStatusRefunded {
		return nil, domainErrors.ErrAlreadyExists
	}
	if order.Status.IsTerminal() {
		return nil, domainErrors.InvalidTransitionError{
			From:   string(order.Status),
			To:     string(order.Status),
			Reason: "order is no longer payable",
		}
	}

	return adapter.CreateCharge(ctx, payment.ChargeRequest{
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		Amount:        order.Total,
		Currency:      u.currency,
		CorrelationID: strconv.FormatInt(order.ID, 10),
		Reference:     uuid.NewString(),
	})
}

// ReconcileCaptured converges a successful capture. Duplicate deliveries
// and unknown order ids are success-without-effect: providers expect a 2xx
// regardless, to stop retry storms.
func (u *PaymentUseCase) ReconcileCaptured(ctx context.Context, orderID int64, transactionID, source string) error {
	order, applied, err := u.orders.MarkPaymentCompleted(ctx, orderID, transactionID, "payment completed via "+source)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("capture for unknown order ignored", slog.Int64("order_id", orderID))
			return nil
		}
		return err
	}
	if !applied {
		u.logger.Warn("capture ignored",
			slog.Int64("order_id", orderID),
			slog.String("status", string(order.Status)),
			slog.String("payment_status", string(order.PaymentStatus)),
		)
		return nil
	}
	u.notify(ctx, order)
	return nil
}

// ReconcileDenied records a failed charge; the order stays PENDING so the
// customer can retry or the sweeper can clean it up.
func (u *PaymentUseCase) ReconcileDenied(ctx context.Context, orderID int64) error {
	_, err := u.orders.MarkPaymentFailed(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("denial for unknown order ignored", slog.Int64("order_id", orderID))
			return nil
		}
		return err
	}
	return nil
}

// ReconcileRefunded converges a refund: payment REFUNDED, order CANCELLED,
// inventory restored, lifetime spend reduced. The order count is untouched.
func (u *PaymentUseCase) ReconcileRefunded(ctx context.Context, orderID int64) error {
	order, applied, err := u.orders.MarkPaymentRefunded(ctx, orderID, "payment refunded")
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("refund for unknown order ignored", slog.Int64("order_id", orderID))
			return nil
		}
		return err
	}
	if applied {
		u.notify(ctx, order)
	}
	return nil
}

func (u *PaymentUseCase) notify(ctx context.Context, order *model.Order) {
	if err := u.notifier.OrderStatusChanged(ctx, order.ID, order.Number, order.Status); err != nil {
		u.logger.Error("status notification failed",
			slog.Int64("order_id", order.ID),
			slog.String("status", string(order.Status)),
			slog.String("error", err.Error()),
		)
	}
}
