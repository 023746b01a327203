package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
)

type stubOrderRepository struct {
	createFn               func(context.Context, *model.Order, []model.OrderItem) (*model.Order, []model.OrderItem, error)
	getByIDFn              func(context.Context, int64) (*model.Order, []model.OrderItem, error)
	listByCustomerFn       func(context.Context, int64, int) ([]model.Order, error)
	listRecentFn           func(context.Context, int64, int) ([]model.Order, error)
	historyFn              func(context.Context, int64) ([]model.StatusHistory, error)
	transitionFn           func(context.Context, int64, model.OrderStatus, string, string, bool) (*model.Order, error)
	markPaymentCompletedFn func(context.Context, int64, string, string) (*model.Order, bool, error)
	markPaymentFailedFn    func(context.Context, int64) (bool, error)
	markPaymentRefundedFn  func(context.Context, int64, string) (*model.Order, bool, error)
	selectAbandonedFn      func(context.Context, time.Time, int) ([]model.Order, error)
	cancelAbandonedFn      func(context.Context, int64, time.Time, string) (bool, error)
}

func (s stubOrderRepository) Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error) {
	return s.createFn(ctx, order, items)
}

func (s stubOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	return s.getByIDFn(ctx, id)
}

func (s stubOrderRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	return s.listByCustomerFn(ctx, customerID, limit)
}

func (s stubOrderRepository) ListRecent(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	return s.listRecentFn(ctx, restaurantID, limit)
}

func (s stubOrderRepository) History(ctx context.Context, orderID int64) ([]model.StatusHistory, error) {
	return s.historyFn(ctx, orderID)
}

func (s stubOrderRepository) Transition(ctx context.Context, orderID int64, next model.OrderStatus, note, actor string, staff bool) (*model.Order, error) {
	return s.transitionFn(ctx, orderID, next, note, actor, staff)
}

func (s stubOrderRepository) MarkPaymentCompleted(ctx context.Context, orderID int64, transactionID, note string) (*model.Order, bool, error) {
	return s.markPaymentCompletedFn(ctx, orderID, transactionID, note)
}

func (s stubOrderRepository) MarkPaymentFailed(ctx context.Context, orderID int64) (bool, error) {
	return s.markPaymentFailedFn(ctx, orderID)
}

func (s stubOrderRepository) MarkPaymentRefunded(ctx context.Context, orderID int64, note string) (*model.Order, bool, error) {
	return s.markPaymentRefundedFn(ctx, orderID, note)
}

func (s stubOrderRepository) SelectAbandoned(ctx context.Context, cutoff time.Time, limit int) ([]model.Order, error) {
	return s.selectAbandonedFn(ctx, cutoff, limit)
}

func (s stubOrderRepository) CancelAbandoned(ctx context.Context, orderID int64, cutoff time.Time, note string) (bool, error) {
	return s.cancelAbandonedFn(ctx, orderID, cutoff, note)
}

type stubMenuRepository struct {
	items map[int64]model.MenuItem
	err   error
}

func (s stubMenuRepository) GetItems(ctx context.Context, ids []int64) (map[int64]model.MenuItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make(map[int64]model.MenuItem, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			result[id] = item
		}
	}
	return result, nil
}

type stubPromoRepository struct {
	promos map[string]*model.PromoCode
	err    error
}

func (s stubPromoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	if promo, ok := s.promos[code]; ok {
		return promo, nil
	}
	return nil, domainErrors.ErrNotFound
}

type stubNotifier struct {
	fn     func(context.Context, int64, string, model.OrderStatus) error
	events []model.OrderStatus
}

func (s *stubNotifier) OrderStatusChanged(ctx context.Context, orderID int64, number string, status model.OrderStatus) error {
	if s.fn != nil {
		return s.fn(ctx, orderID, number, status)
	}
	s.events = append(s.events, status)
	return nil
}

var testPricing = Pricing{Currency: "USD", TaxRate: 0.08, ServiceFee: 1.50, DeliveryFee: 2.99}

func testMenu() stubMenuRepository {
	stock := 10
	return stubMenuRepository{items: map[int64]model.MenuItem{
		1: {ID: 1, RestaurantID: 1, Name: "Margherita", Price: 12.00, Available: true},
		2: {ID: 2, RestaurantID: 1, Name: "Lemonade", Price: 3.50, Available: true, TrackInventory: true, StockQuantity: &stock},
		3: {ID: 3, RestaurantID: 1, Name: "Old Special", Price: 8.00, Available: false},
	}}
}

func dineInRequest() CreateOrderRequest {
	return CreateOrderRequest{
		RestaurantID:  1,
		CustomerID:    7,
		Fulfillment:   model.FulfillmentDineIn,
		PaymentMethod: model.PaymentMethodCard,
		TableNumber:   "12",
		Items: []CreateOrderItemRequest{
			{MenuItemID: 1, Quantity: 2, Customizations: []model.Customization{{Name: "extra cheese", Price: 1.00}}},
			{MenuItemID: 2, Quantity: 1},
		},
		TipAmount: 3.00,
	}
}

func passthroughCreate(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error) {
	stored := *order
	stored.ID = 42
	stored.Status = model.OrderStatusPending
	stored.PaymentStatus = model.PaymentStatusPending
	out := make([]model.OrderItem, len(items))
	copy(out, items)
	return &stored, out, nil
}

func TestOrderUseCaseCreatePricesAuthoritatively(t *testing.T) {
	repo := stubOrderRepository{createFn: passthroughCreate}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	order, items, err := uc.Create(context.Background(), dineInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 x (12.00 + 1.00) + 1 x 3.50 = 29.50
	if order.Subtotal != 29.50 {
		t.Fatalf("unexpected subtotal %v", order.Subtotal)
	}
	if order.TaxAmount != 2.36 {
		t.Fatalf("unexpected tax %v", order.TaxAmount)
	}
	if order.ServiceFee != 1.50 {
		t.Fatalf("unexpected service fee %v", order.ServiceFee)
	}
	if order.DeliveryFee != 0 {
		t.Fatalf("dine-in order should have no delivery fee, got %v", order.DeliveryFee)
	}
	if order.Total != 36.36 {
		t.Fatalf("unexpected total %v", order.Total)
	}
	if !order.ReconcilesTotal() {
		t.Fatal("expected money breakdown to reconcile")
	}
	if order.Number == "" {
		t.Fatal("expected generated order number")
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Margherita" || items[0].UnitPrice != 12.00 {
		t.Fatalf("expected snapshot from menu, got %+v", items[0])
	}
}

func TestOrderUseCaseCreateAddsDeliveryFee(t *testing.T) {
	repo := stubOrderRepository{createFn: passthroughCreate}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	addressID := int64(3)
	req := dineInRequest()
	req.Fulfillment = model.FulfillmentDelivery
	req.TableNumber = ""
	req.DeliveryAddressID = &addressID
	req.ContactPhone = "+15550100"

	order, _, err := uc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.DeliveryFee != 2.99 {
		t.Fatalf("unexpected delivery fee %v", order.DeliveryFee)
	}
	if !order.ReconcilesTotal() {
		t.Fatal("expected money breakdown to reconcile")
	}
}

func TestOrderUseCaseCreateRejectsUnavailableItem(t *testing.T) {
	repo := stubOrderRepository{createFn: func(context.Context, *model.Order, []model.OrderItem) (*model.Order, []model.OrderItem, error) {
		t.Fatal("create should not be called for unavailable item")
		return nil, nil, nil
	}}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	req := dineInRequest()
	req.Items = append(req.Items, CreateOrderItemRequest{MenuItemID: 3, Quantity: 1})

	if _, _, err := uc.Create(context.Background(), req); !errors.Is(err, domainErrors.ErrMenuItemUnavailable) {
		t.Fatalf("expected menu item unavailable, got %v", err)
	}
}

func TestOrderUseCaseCreateRejectsUnknownItem(t *testing.T) {
	uc := NewOrderUseCase(stubOrderRepository{}, testMenu(), stubPromoRepository{}, testPricing)

	req := dineInRequest()
	req.Items = []CreateOrderItemRequest{{MenuItemID: 99, Quantity: 1}}

	if _, _, err := uc.Create(context.Background(), req); !errors.Is(err, domainErrors.ErrMenuItemUnavailable) {
		t.Fatalf("expected menu item unavailable, got %v", err)
	}
}

func TestOrderUseCaseCreateAppliesPromo(t *testing.T) {
	repo := stubOrderRepository{createFn: passthroughCreate}
	promo := &model.PromoCode{
		ID:         5,
		Code:       "SAVE10",
		Type:       model.PromoTypePercent,
		Value:      10,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		Active:     true,
	}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{promos: map[string]*model.PromoCode{"SAVE10": promo}}, testPricing)

	req := dineInRequest()
	req.PromoCode = "SAVE10"

	order, _, err := uc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Discount != 2.95 {
		t.Fatalf("unexpected discount %v", order.Discount)
	}
	if order.PromoCodeID == nil || *order.PromoCodeID != 5 {
		t.Fatalf("expected promo code id to be recorded, got %v", order.PromoCodeID)
	}
	if !order.ReconcilesTotal() {
		t.Fatal("expected money breakdown to reconcile")
	}
}

func TestOrderUseCaseCreateRejectsBadPromo(t *testing.T) {
	uc := NewOrderUseCase(stubOrderRepository{}, testMenu(), stubPromoRepository{}, testPricing)

	req := dineInRequest()
	req.PromoCode = "NOPE"

	if _, _, err := uc.Create(context.Background(), req); !errors.Is(err, domainErrors.ErrPromoInvalid) {
		t.Fatalf("expected promo invalid, got %v", err)
	}
}

func TestOrderUseCaseCreateRejectsExpiredPromo(t *testing.T) {
	promo := &model.PromoCode{
		Code:       "OLD",
		Type:       model.PromoTypeFixed,
		Value:      5,
		ValidFrom:  time.Now().Add(-2 * time.Hour),
		ValidUntil: time.Now().Add(-time.Hour),
		Active:     true,
	}
	uc := NewOrderUseCase(stubOrderRepository{}, testMenu(), stubPromoRepository{promos: map[string]*model.PromoCode{"OLD": promo}}, testPricing)

	req := dineInRequest()
	req.PromoCode = "OLD"

	if _, _, err := uc.Create(context.Background(), req); !errors.Is(err, domainErrors.ErrPromoInvalid) {
		t.Fatalf("expected promo invalid, got %v", err)
	}
}

func TestOrderUseCaseCreateRetriesNumberCollision(t *testing.T) {
	attempts := 0
	repo := stubOrderRepository{createFn: func(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, []model.OrderItem, error) {
		attempts++
		if attempts == 1 {
			return nil, nil, domainErrors.ErrAlreadyExists
		}
		return passthroughCreate(ctx, order, items)
	}}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	if _, _, err := uc.Create(context.Background(), dineInRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestOrderUseCaseCreateGivesUpAfterCollisions(t *testing.T) {
	repo := stubOrderRepository{createFn: func(context.Context, *model.Order, []model.OrderItem) (*model.Order, []model.OrderItem, error) {
		return nil, nil, domainErrors.ErrAlreadyExists
	}}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	if _, _, err := uc.Create(context.Background(), dineInRequest()); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
}

func TestOrderUseCaseGetEnforcesOwnership(t *testing.T) {
	repo := stubOrderRepository{getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
		return &model.Order{ID: 1, CustomerID: 7}, nil, nil
	}}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	if _, _, err := uc.Get(context.Background(), 1, 8, false); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, _, err := uc.Get(context.Background(), 1, 7, false); err != nil {
		t.Fatalf("owner should read own order: %v", err)
	}
	if _, _, err := uc.Get(context.Background(), 1, 8, true); err != nil {
		t.Fatalf("staff should read any order: %v", err)
	}
}

func TestOrderUseCaseHistoryEnforcesOwnership(t *testing.T) {
	repo := stubOrderRepository{
		getByIDFn: func(context.Context, int64) (*model.Order, []model.OrderItem, error) {
			return &model.Order{ID: 1, CustomerID: 7}, nil, nil
		},
		historyFn: func(context.Context, int64) ([]model.StatusHistory, error) {
			return []model.StatusHistory{{OrderID: 1, Status: model.OrderStatusPending}}, nil
		},
	}
	uc := NewOrderUseCase(repo, testMenu(), stubPromoRepository{}, testPricing)

	if _, err := uc.History(context.Background(), 1, 8, false); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	entries, err := uc.History(context.Background(), 1, 7, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}
