package test

import (
	"context"
	"sync"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/domain/model"
	pkgAuth "github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/usecase"
)

// NotifierStub records status change notifications.
type NotifierStub struct {
	Fn  func(context.Context, int64, string, model.OrderStatus) error
	Err error

	mu     sync.Mutex
	events []NotifiedEvent
}

// NotifiedEvent is one recorded notification.
type NotifiedEvent struct {
	OrderID int64
	Number  string
	Status  model.OrderStatus
}

// OrderStatusChanged records the event and returns the configured error.
func (s *NotifierStub) OrderStatusChanged(ctx context.Context, orderID int64, number string, status model.OrderStatus) error {
	if s.Fn != nil {
		return s.Fn(ctx, orderID, number, status)
	}
	s.mu.Lock()
	s.events = append(s.events, NotifiedEvent{OrderID: orderID, Number: number, Status: status})
	s.mu.Unlock()
	return s.Err
}

// Events returns a copy of the recorded notifications.
func (s *NotifierStub) Events() []NotifiedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NotifiedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// FacadeStub provides controllable behaviour for HTTP handler tests.
type FacadeStub struct {
	CreateOrderFn       func(context.Context, usecase.CreateOrderRequest) (*model.Order, []model.OrderItem, error)
	OrderFn             func(context.Context, int64, int64, bool) (*model.Order, []model.OrderItem, error)
	OrderHistoryFn      func(context.Context, int64, int64, bool) ([]model.StatusHistory, error)
	OrdersByCustomerFn  func(context.Context, int64, int) ([]model.Order, error)
	RecentOrdersFn      func(context.Context, int64, int) ([]model.Order, error)
	TransitionOrderFn   func(context.Context, int64, model.OrderStatus, string, string) (*model.Order, error)
	CancelOrderFn       func(context.Context, int64, int64) (*model.Order, error)
	CreateChargeFn      func(context.Context, payment.Provider, int64, int64, bool) (*payment.ChargeResult, error)
	ReconcileCapturedFn func(context.Context, int64, string, string) error
	ReconcileDeniedFn   func(context.Context, int64) error
	ReconcileRefundedFn func(context.Context, int64) error
	ParseTokenFn        func(string) (*pkgAuth.Claims, error)
	HealthFn            func(context.Context) error
}

// CreateOrder delegates to the override or returns a default order.
func (s *FacadeStub) CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, []model.OrderItem, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, req)
	}
	return &model.Order{ID: 1, Number: "ORD-1", CustomerID: req.CustomerID, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil, nil
}

// Order delegates to the override or returns a default order.
func (s *FacadeStub) Order(ctx context.Context, orderID, callerID int64, staff bool) (*model.Order, []model.OrderItem, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID, callerID, staff)
	}
	return &model.Order{ID: orderID, CustomerID: callerID, Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil, nil
}

// OrderHistory delegates to the override or returns a single entry.
func (s *FacadeStub) OrderHistory(ctx context.Context, orderID, callerID int64, staff bool) ([]model.StatusHistory, error) {
	if s.OrderHistoryFn != nil {
		return s.OrderHistoryFn(ctx, orderID, callerID, staff)
	}
	return []model.StatusHistory{{OrderID: orderID, Status: model.OrderStatusPending, Actor: model.ActorCustomer}}, nil
}

// OrdersByCustomer delegates to the override or returns an empty list.
func (s *FacadeStub) OrdersByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	if s.OrdersByCustomerFn != nil {
		return s.OrdersByCustomerFn(ctx, customerID, limit)
	}
	return nil, nil
}

// RecentOrders delegates to the override or returns an empty list.
func (s *FacadeStub) RecentOrders(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	if s.RecentOrdersFn != nil {
		return s.RecentOrdersFn(ctx, restaurantID, limit)
	}
	return nil, nil
}

// TransitionOrder delegates to the override or echoes the requested status.
func (s *FacadeStub) TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, note, staffID string) (*model.Order, error) {
	if s.TransitionOrderFn != nil {
		return s.TransitionOrderFn(ctx, orderID, next, note, staffID)
	}
	return &model.Order{ID: orderID, Status: next}, nil
}

// CancelOrder delegates to the override or returns a cancelled order.
func (s *FacadeStub) CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	if s.CancelOrderFn != nil {
		return s.CancelOrderFn(ctx, orderID, customerID)
	}
	return &model.Order{ID: orderID, CustomerID: customerID, Status: model.OrderStatusCancelled}, nil
}

// CreateCharge delegates to the override or returns a simulated charge.
func (s *FacadeStub) CreateCharge(ctx context.Context, provider payment.Provider, orderID, callerID int64, staff bool) (*payment.ChargeResult, error) {
	if s.CreateChargeFn != nil {
		return s.CreateChargeFn(ctx, provider, orderID, callerID, staff)
	}
	return &payment.ChargeResult{Provider: provider, ExternalID: "ext", Simulated: true}, nil
}

// ReconcileCaptured delegates to the override.
func (s *FacadeStub) ReconcileCaptured(ctx context.Context, orderID int64, transactionID, source string) error {
	if s.ReconcileCapturedFn != nil {
		return s.ReconcileCapturedFn(ctx, orderID, transactionID, source)
	}
	return nil
}

// ReconcileDenied delegates to the override.
func (s *FacadeStub) ReconcileDenied(ctx context.Context, orderID int64) error {
	if s.ReconcileDeniedFn != nil {
		return s.ReconcileDeniedFn(ctx, orderID)
	}
	return nil
}

// ReconcileRefunded delegates to the override.
func (s *FacadeStub) ReconcileRefunded(ctx context.Context, orderID int64) error {
	if s.ReconcileRefundedFn != nil {
		return s.ReconcileRefundedFn(ctx, orderID)
	}
	return nil
}

// ParseToken delegates to the override or returns a default customer.
func (s *FacadeStub) ParseToken(token string) (*pkgAuth.Claims, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return &pkgAuth.Claims{UserID: 1, Role: pkgAuth.RoleCustomer}, nil
}

// Health delegates to the override or reports healthy.
func (s *FacadeStub) Health(ctx context.Context) error {
	if s.HealthFn != nil {
		return s.HealthFn(ctx)
	}
	return nil
}
