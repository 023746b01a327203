package app

import (
	"context"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/domain/model"
	pkgAuth "github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/storage/postgres"
	"github.com/okateva/resto/internal/usecase"
)

// RestaurantFacade aggregates the order, payment and sweep use cases behind
// the surface consumed by HTTP handlers and the background sweeper.
type RestaurantFacade struct {
	orders   *usecase.OrderUseCase
	status   *usecase.StatusUseCase
	payments *usecase.PaymentUseCase
	sweep    *usecase.SweepUseCase
	tokens   pkgAuth.Strategy
	storage  *postgres.Storage
}

func NewRestaurantFacade(
	orders *usecase.OrderUseCase,
	status *usecase.StatusUseCase,
	payments *usecase.PaymentUseCase,
	sweep *usecase.SweepUseCase,
	tokens pkgAuth.Strategy,
	storage *postgres.Storage,
) *RestaurantFacade {
	return &RestaurantFacade{
		orders:   orders,
		status:   status,
		payments: payments,
		sweep:    sweep,
		tokens:   tokens,
		storage:  storage,
	}
}

func (f *RestaurantFacade) ParseToken(token string) (*pkgAuth.Claims, error) {
	return f.tokens.ParseToken(token)
}

func (f *RestaurantFacade) CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, []model.OrderItem, error) {
	return f.orders.Create(ctx, req)
}

func (f *RestaurantFacade) Order(ctx context.Context, orderID, callerID int64, staff bool) (*model.Order, []model.OrderItem, error) {
	return f.orders.Get(ctx, orderID, callerID, staff)
}

func (f *RestaurantFacade) OrderHistory(ctx context.Context, orderID, callerID int64, staff bool) ([]model.StatusHistory, error) {
	return f.orders.History(ctx, orderID, callerID, staff)
}

func (f *RestaurantFacade) OrdersByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	return f.orders.ListByCustomer(ctx, customerID, limit)
}

func (f *RestaurantFacade) RecentOrders(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	return f.orders.ListRecent(ctx, restaurantID, limit)
}

func (f *RestaurantFacade) TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, note, staffID string) (*model.Order, error) {
	return f.status.Transition(ctx, orderID, next, note, staffID)
}

func (f *RestaurantFacade) CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error) {
	return f.status.CancelByCustomer(ctx, orderID, customerID)
}

func (f *RestaurantFacade) CreateCharge(ctx context.Context, provider payment.Provider, orderID, callerID int64, staff bool) (*payment.ChargeResult, error) {
	return f.payments.CreateCharge(ctx, provider, orderID, callerID, staff)
}

func (f *RestaurantFacade) ReconcileCaptured(ctx context.Context, orderID int64, transactionID, source string) error {
	return f.payments.ReconcileCaptured(ctx, orderID, transactionID, source)
}

func (f *RestaurantFacade) ReconcileDenied(ctx context.Context, orderID int64) error {
	return f.payments.ReconcileDenied(ctx, orderID)
}

func (f *RestaurantFacade) ReconcileRefunded(ctx context.Context, orderID int64) error {
	return f.payments.ReconcileRefunded(ctx, orderID)
}

func (f *RestaurantFacade) SweepAbandoned(ctx context.Context) (usecase.SweepResult, error) {
	return f.sweep.SweepAbandoned(ctx)
}

func (f *RestaurantFacade) Health(ctx context.Context) error {
	return f.storage.HealthCheck(ctx)
}
