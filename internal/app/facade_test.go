package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/okateva/resto/internal/adapter/payment"
	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	pkgAuth "github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/storage/postgres"
	testhelpers "github.com/okateva/resto/internal/test"
	"github.com/okateva/resto/internal/usecase"
)

func newFacade() (*RestaurantFacade, *testhelpers.OrderRepositoryStub, *testhelpers.NotifierStub) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	orders := &testhelpers.OrderRepositoryStub{}
	menu := &testhelpers.MenuRepositoryStub{Items: map[int64]model.MenuItem{
		1: {ID: 1, RestaurantID: 1, Name: "Margherita", Price: 12, Available: true},
	}}
	promos := &testhelpers.PromoRepositoryStub{}
	notifier := &testhelpers.NotifierStub{}

	orderUC := usecase.NewOrderUseCase(orders, menu, promos, usecase.Pricing{
		Currency: "USD", TaxRate: 0.1, ServiceFee: 2,
	})
	statusUC := usecase.NewStatusUseCase(orders, notifier, logger)
	registry := payment.Registry{payment.ProviderCash: payment.NewCashAdapter()}
	paymentUC := usecase.NewPaymentUseCase(orders, registry, notifier, logger, "USD")
	sweepUC := usecase.NewSweepUseCase(orders, notifier, logger, 15*time.Minute, 10)
	strategy := pkgAuth.NewJWTStrategy("facade-secret", pkgAuth.Options{})

	facade := NewRestaurantFacade(orderUC, statusUC, paymentUC, sweepUC, strategy, &postgres.Storage{})
	return facade, orders, notifier
}

func pickupRequest(customerID int64) usecase.CreateOrderRequest {
	pickup := time.Now().Add(30 * time.Minute)
	return usecase.CreateOrderRequest{
		RestaurantID:  1,
		CustomerID:    customerID,
		Fulfillment:   model.FulfillmentPickup,
		PaymentMethod: model.PaymentMethodCash,
		Items:         []usecase.CreateOrderItemRequest{{MenuItemID: 1, Quantity: 2}},
		PickupTime:    &pickup,
	}
}

func TestRestaurantFacadeParseToken(t *testing.T) {
	facade, _, _ := newFacade()

	token, err := facade.tokens.IssueToken(42, pkgAuth.RoleWaiter)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	claims, err := facade.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 || claims.Role != pkgAuth.RoleWaiter {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRestaurantFacadeOrders(t *testing.T) {
	facade, _, _ := newFacade()
	ctx := context.Background()

	order, items, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Total != 28.4 { // 24 subtotal + 2.40 tax + 2 service fee
		t.Fatalf("unexpected total %v", order.Total)
	}
	if len(items) != 1 || items[0].Name != "Margherita" {
		t.Fatalf("unexpected items: %+v", items)
	}

	got, _, err := facade.Order(ctx, order.ID, 7, false)
	if err != nil || got.ID != order.ID {
		t.Fatalf("get order: %+v err=%v", got, err)
	}
	if _, _, err := facade.Order(ctx, order.ID, 8, false); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign customer, got %v", err)
	}

	listed, err := facade.OrdersByCustomer(ctx, 7, 10)
	if err != nil || len(listed) != 1 {
		t.Fatalf("orders by customer: %v err=%v", listed, err)
	}

	recent, err := facade.RecentOrders(ctx, 1, 10)
	if err != nil || len(recent) != 1 {
		t.Fatalf("recent orders: %v err=%v", recent, err)
	}

	history, err := facade.OrderHistory(ctx, order.ID, 7, false)
	if err != nil || len(history) == 0 {
		t.Fatalf("order history: %v err=%v", history, err)
	}
}

func TestRestaurantFacadeTransitions(t *testing.T) {
	facade, orders, notifier := newFacade()
	ctx := context.Background()

	order, _, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := facade.TransitionOrder(ctx, order.ID, model.OrderStatusAccepted, "", "42")
	if err != nil || updated.Status != model.OrderStatusAccepted {
		t.Fatalf("transition: %+v err=%v", updated, err)
	}
	if len(orders.TransitionCalls) != 1 || !orders.TransitionCalls[0].Staff {
		t.Fatalf("unexpected transition calls: %+v", orders.TransitionCalls)
	}
	if len(notifier.Events()) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.Events()))
	}

	second, _, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	cancelled, err := facade.CancelOrder(ctx, second.ID, 7)
	if err != nil || cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("cancel: %+v err=%v", cancelled, err)
	}
}

func TestRestaurantFacadePayments(t *testing.T) {
	facade, _, notifier := newFacade()
	ctx := context.Background()

	order, _, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	charge, err := facade.CreateCharge(ctx, payment.ProviderCash, order.ID, 7, false)
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if charge.Provider != payment.ProviderCash || charge.ExternalID != "cash-"+order.Number {
		t.Fatalf("unexpected charge result: %+v", charge)
	}

	if err := facade.ReconcileCaptured(ctx, order.ID, "txn-1", "card webhook"); err != nil {
		t.Fatalf("reconcile captured: %v", err)
	}
	if len(notifier.Events()) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.Events()))
	}

	if err := facade.ReconcileRefunded(ctx, order.ID); err != nil {
		t.Fatalf("reconcile refunded: %v", err)
	}

	failing, _, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := facade.ReconcileDenied(ctx, failing.ID); err != nil {
		t.Fatalf("reconcile denied: %v", err)
	}
}

func TestRestaurantFacadeSweep(t *testing.T) {
	facade, orders, _ := newFacade()
	ctx := context.Background()

	order, _, err := facade.CreateOrder(ctx, pickupRequest(7))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	for _, o := range orders.Stored {
		o.CreatedAt = time.Now().Add(-time.Hour)
	}

	result, err := facade.SweepAbandoned(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Scanned != 1 || result.Cancelled != 1 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}
	if len(orders.CancelledIDs) != 1 || orders.CancelledIDs[0] != order.ID {
		t.Fatalf("unexpected cancelled ids: %v", orders.CancelledIDs)
	}
}
