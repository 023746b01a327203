package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/domain/repository"
)

// Notifier is the external notification collaborator. Delivery failures are
// logged and never block or reverse the triggering state change.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, orderID int64, number string, status model.OrderStatus) error
}

// StatusUseCase drives fulfillment transitions through the lifecycle rules.
type StatusUseCase struct {
	orders   repository.OrderRepository
	notifier Notifier
	logger   *slog.Logger
}

// NewStatusUseCase constructs StatusUseCase.
func NewStatusUseCase(orders repository.OrderRepository, notifier Notifier, logger *slog.Logger) *StatusUseCase {
	return &StatusUseCase{orders: orders, notifier: notifier, logger: logger}
}

// Transition applies a status change on behalf of staff. The status update,
// history row and any side-effect reversal commit or roll back together.
func (u *StatusUseCase) Transition(ctx context.Context, orderID int64, next model.OrderStatus, note, staffID string) (*model.Order, error) {
	order, err := u.orders.Transition(ctx, orderID, next, note, staffID, true)
	if err != nil {
		return nil, err
	}
	u.notify(ctx, order)
	return order, nil
}

// CancelByCustomer is the customer self-cancellation path: only CANCELLED,
// and only while the kitchen has not started.
func (u *StatusUseCase) CancelByCustomer(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	current, _, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.CustomerID != customerID {
		return nil, domainErrors.ErrForbidden
	}

	order, err := u.orders.Transition(ctx, orderID, model.OrderStatusCancelled, "cancelled by customer", model.ActorCustomer, false)
	if err != nil {
		return nil, err
	}
	u.notify(ctx, order)
	return order, nil
}

func (u *StatusUseCase) notify(ctx context.Context, order *model.Order) {
	if err := u.notifier.OrderStatusChanged(ctx, order.ID, order.Number, order.Status); err != nil {
		u.logger.Error("status notification failed",
			slog.Int64("order_id", order.ID),
			slog.String("status", string(order.Status)),
			slog.String("error", err.Error()),
		)
	}
}
