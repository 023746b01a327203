package handlers

import (
	"context"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/domain/model"
	pkgAuth "github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/usecase"
)

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, []model.OrderItem, error)
	Order(ctx context.Context, orderID, callerID int64, staff bool) (*model.Order, []model.OrderItem, error)
	OrderHistory(ctx context.Context, orderID, callerID int64, staff bool) ([]model.StatusHistory, error)
	OrdersByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error)
	RecentOrders(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error)
	TransitionOrder(ctx context.Context, orderID int64, next model.OrderStatus, note, staffID string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID, customerID int64) (*model.Order, error)
}

// PaymentFacade provides charge creation and webhook reconciliation.
type PaymentFacade interface {
	CreateCharge(ctx context.Context, provider payment.Provider, orderID, callerID int64, staff bool) (*payment.ChargeResult, error)
	ReconcileCaptured(ctx context.Context, orderID int64, transactionID, source string) error
	ReconcileDenied(ctx context.Context, orderID int64) error
	ReconcileRefunded(ctx context.Context, orderID int64) error
}

// RestaurantFacade aggregates the full set of operations used across handlers.
type RestaurantFacade interface {
	OrderFacade
	PaymentFacade
	ParseToken(token string) (*pkgAuth.Claims, error)
	Health(ctx context.Context) error
}
