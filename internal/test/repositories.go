package test

import (
	"context"
	"time"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
)

// TransitionCall captures one Transition invocation.
type TransitionCall struct {
	OrderID int64
	Next    model.OrderStatus
	Note    string
	Actor   string
	Staff   bool
}

// OrderRepositoryStub allows tests to customize order persistence behaviour.
type OrderRepositoryStub struct {
	CreateFn               func(context.Context, *model.Order, []model.OrderItem) (*model.Order, []model.OrderItem, error)
	GetByIDFn              func(context.Context, int64) (*model.Order, []model.OrderItem, error)
	ListByCustomerFn       func(context.Context, int64, int) ([]model.Order, error)
	ListRecentFn           func(context.Context, int64, int) ([]model.Order, error)
	HistoryFn              func(context.Context, int64) ([]model.StatusHistory, error)
	TransitionFn           func(context.Context, int64, model.OrderStatus, string, string, bool) (*model.Order, error)
	MarkPaymentCompletedFn func(context.Context, int64, string, string) (*model.Order, bool, error)
	MarkPaymentFailedFn    func(context.Context, int64) (bool, error)
	MarkPaymentRefundedFn  func(context.Context, int64, string) (*model.Order, bool, error)
	SelectAbandonedFn      func(context.Context, time.Time, int) ([]model.Order, error)
	CancelAbandonedFn      func(context.Context, int64, time.Time, string) (bool, error)

	Stored          []*model.Order
	TransitionCalls []TransitionCall
	CancelledIDs    []int64
}

// Create tracks invocations and returns configured responses.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order, items)
	}
	stored := *order
	stored.ID = int64(len(s.Stored) + 1)
	stored.Status = model.OrderStatusPending
	stored.PaymentStatus = model.PaymentStatusPending
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.Stored = append(s.Stored, &stored)
	out := make([]model.OrderItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].ID = int64(i + 1)
		out[i].OrderID = stored.ID
	}
	return &stored, out, nil
}

// GetByID returns a stored order or the configured override.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	for _, o := range s.Stored {
		if o.ID == id {
			order := *o
			return &order, nil, nil
		}
	}
	return nil, nil, domainErrors.ErrNotFound
}

// ListByCustomer returns orders from the configured override or stored slice.
func (s *OrderRepositoryStub) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	if s.ListByCustomerFn != nil {
		return s.ListByCustomerFn(ctx, customerID, limit)
	}
	var result []model.Order
	for _, o := range s.Stored {
		if o.CustomerID == customerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

// ListRecent returns orders for a restaurant.
func (s *OrderRepositoryStub) ListRecent(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	if s.ListRecentFn != nil {
		return s.ListRecentFn(ctx, restaurantID, limit)
	}
	var result []model.Order
	for _, o := range s.Stored {
		if o.RestaurantID == restaurantID {
			result = append(result, *o)
		}
	}
	return result, nil
}

// History returns the configured audit trail.
func (s *OrderRepositoryStub) History(ctx context.Context, orderID int64) ([]model.StatusHistory, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, orderID)
	}
	return []model.StatusHistory{{OrderID: orderID, Status: model.OrderStatusPending}}, nil
}

// Transition records the call and applies the change to the stored order.
func (s *OrderRepositoryStub) Transition(ctx context.Context, orderID int64, next model.OrderStatus, note, actor string, staff bool) (*model.Order, error) {
	s.TransitionCalls = append(s.TransitionCalls, TransitionCall{OrderID: orderID, Next: next, Note: note, Actor: actor, Staff: staff})
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, orderID, next, note, actor, staff)
	}
	for _, o := range s.Stored {
		if o.ID == orderID {
			allowed, reason := model.TransitionAllowed(o.Status, next, staff)
			if !allowed {
				return nil, domainErrors.InvalidTransitionError{From: string(o.Status), To: string(next), Reason: reason}
			}
			o.Status = next
			order := *o
			return &order, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// MarkPaymentCompleted settles payment on the stored order.
func (s *OrderRepositoryStub) MarkPaymentCompleted(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
	if s.MarkPaymentCompletedFn != nil {
		return s.MarkPaymentCompletedFn(ctx, orderID, transactionID, note)
	}
	for _, o := range s.Stored {
		if o.ID == orderID {
			if o.PaymentStatus == model.PaymentStatusCompleted ||
				o.Status == model.OrderStatusCancelled || o.Status == model.OrderStatusRejected {
				order := *o
				return &order, false, nil
			}
			o.PaymentStatus = model.PaymentStatusCompleted
			o.TransactionID = &transactionID
			if o.Status == model.OrderStatusPending {
				o.Status = model.OrderStatusAccepted
			}
			order := *o
			return &order, true, nil
		}
	}
	return nil, false, domainErrors.ErrNotFound
}

// MarkPaymentFailed records a denied charge.
func (s *OrderRepositoryStub) MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error) {
	if s.MarkPaymentFailedFn != nil {
		return s.MarkPaymentFailedFn(ctx, orderID)
	}
	for _, o := range s.Stored {
		if o.ID == orderID {
			if o.PaymentStatus != model.PaymentStatusPending {
				return false, nil
			}
			o.PaymentStatus = model.PaymentStatusFailed
			return true, nil
		}
	}
	return false, domainErrors.ErrNotFound
}

// MarkPaymentRefunded converges a refund on the stored order.
func (s *OrderRepositoryStub) MarkPaymentRefunded(ctx context.Context, orderID int64, note string) (*model.Order, bool, error) {
	if s.MarkPaymentRefundedFn != nil {
		return s.MarkPaymentRefundedFn(ctx, orderID, note)
	}
	for _, o := range s.Stored {
		if o.ID == orderID {
			if o.PaymentStatus == model.PaymentStatusRefunded {
				order := *o
				return &order, false, nil
			}
			o.PaymentStatus = model.PaymentStatusRefunded
			if o.Status != model.OrderStatusCancelled && o.Status != model.OrderStatusRejected {
				o.Status = model.OrderStatusCancelled
			}
			order := *o
			return &order, true, nil
		}
	}
	return nil, false, domainErrors.ErrNotFound
}

// SelectAbandoned returns stale PENDING/PENDING stored orders.
func (s *OrderRepositoryStub) SelectAbandoned(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	if s.SelectAbandonedFn != nil {
		return s.SelectAbandonedFn(ctx, cutoff, limit)
	}
	var result []model.Order
	for _, o := range s.Stored {
		if o.Status == model.OrderStatusPending && o.PaymentStatus == model.PaymentStatusPending && o.CreatedAt.Before(cutoff) {
			result = append(result, *o)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// CancelAbandoned cancels one stale stored order, recording the id.
func (s *OrderRepositoryStub) CancelAbandoned(ctx context.Context, orderID int64, cutoff time.Time, note string) (bool, error) {
	if s.CancelAbandonedFn != nil {
		return s.CancelAbandonedFn(ctx, orderID, cutoff, note)
	}
	for _, o := range s.Stored {
		if o.ID == orderID {
			if o.Status != model.OrderStatusPending || o.PaymentStatus != model.PaymentStatusPending || !o.CreatedAt.Before(cutoff) {
				return false, nil
			}
			o.Status = model.OrderStatusCancelled
			s.CancelledIDs = append(s.CancelledIDs, orderID)
			return true, nil
		}
	}
	return false, nil
}

// MenuRepositoryStub serves menu items from a map.
type MenuRepositoryStub struct {
	Items map[int64]model.MenuItem
	Err   error
}

// GetItems returns the stubbed items matching the requested ids.
func (s *MenuRepositoryStub) GetItems(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	result := make(map[int64]model.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := s.Items[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

// PromoRepositoryStub serves promo codes from a map.
type PromoRepositoryStub struct {
	Promos map[string]*model.PromoCode
	Err    error
}

// GetByCode returns the stubbed promo or not found.
func (s *PromoRepositoryStub) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if promo, ok := s.Promos[code]; ok {
		return promo, nil
	}
	return nil, domainErrors.ErrNotFound
}

// CustomerRepositoryStub serves customer aggregates from a map.
type CustomerRepositoryStub struct {
	Customers map[int64]*model.Customer
}

// Get returns the stubbed customer or a zero-valued aggregate.
func (s *CustomerRepositoryStub) Get(ctx context.Context, id int64) (*model.Customer, error) {
	if c, ok := s.Customers[id]; ok {
		return c, nil
	}
	return &model.Customer{ID: id}, nil
}
