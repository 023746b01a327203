package repository

import (
	"context"
	"time"

	"github.com/okateva/resto/internal/domain/model"
)

// OrderRepository describes persistence operations for orders. Every
// multi-step mutation (create, transition, reconcile, sweep-cancel) is a
// single transaction; implementations must read current state and write the
// new state under the same transaction so concurrent webhook deliveries,
// customer cancellations and the sweeper cannot race each other.
type OrderRepository interface {
	// Create persists the order, its line items and the initial PENDING
	// history row, increments customer aggregates and promo usage, and
	// decrements stock for trackable items. Fails atomically.
	Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error)

	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error)
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error)
	ListRecent(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error)
	History(ctx context.Context, orderID int64) ([]model.StatusHistory, error)

	// Transition applies a fulfillment status change with its history row
	// and, when moving into CANCELLED/REJECTED with payment not yet
	// reversed, restores inventory and reverses customer aggregates.
	Transition(ctx context.Context, orderID int64, next model.OrderStatus, note, actor string, staff bool) (*model.Order, error)

	// MarkPaymentCompleted is idempotent under duplicate delivery: the
	// returned bool is false when the payment was already COMPLETED and
	// nothing changed. A capture arriving after the order was cancelled or
	// rejected is refused the same way, so a CANCELLED order never carries
	// COMPLETED payment; the mismatch is settled by the refund path.
	MarkPaymentCompleted(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error)

	// MarkPaymentFailed records a denied charge; fulfillment status is left
	// untouched so the order stays retryable and sweepable.
	MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error)

	// MarkPaymentRefunded cancels the order, restores stock and subtracts
	// the order total from the customer's lifetime spend. The order count
	// is deliberately left alone: a refund does not unmake the order.
	MarkPaymentRefunded(ctx context.Context, orderID int64, note string) (*model.Order, bool, error)

	// SelectAbandoned returns PENDING/PENDING orders created before cutoff,
	// skipping rows a concurrent sweep already holds locked.
	SelectAbandoned(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error)

	// CancelAbandoned cancels one stale order, restoring stock and
	// reversing both customer aggregates. The write is conditional on the
	// order still being PENDING/PENDING and older than cutoff, so a
	// payment completing between select and cancel wins the race.
	CancelAbandoned(ctx context.Context, orderID int64, cutoff time.Time, note string) (bool, error)
}
