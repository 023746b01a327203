package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/domain/repository"
)

// Pricing holds the restaurant-level pricing knobs applied server-side.
type Pricing struct {
	Currency    string
	TaxRate     float64
	ServiceFee  float64
	DeliveryFee float64
}

// OrderUseCase encapsulates order creation and reads. Pricing is always
// computed here from stored menu prices; client-submitted totals are never
// trusted.
type OrderUseCase struct {
	orders  repository.OrderRepository
	menu    repository.MenuRepository
	promos  repository.PromoRepository
	pricing Pricing
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, menu repository.MenuRepository, promos repository.PromoRepository, pricing Pricing) *OrderUseCase {
	return &OrderUseCase{orders: orders, menu: menu, promos: promos, pricing: pricing}
}

const createAttempts = 3

// Create validates the request, prices it authoritatively and persists the
// order, its items and the initial PENDING history row atomically. Payment
// is a separate, subsequent step.
func (u *OrderUseCase) Create(ctx context.Context, req CreateOrderRequest) (*model.Order, []model.OrderItem, error) {
	if err := ValidateOrderRequest(req); err != nil {
		return nil, nil, err
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.MenuItemID)
	}
	menuItems, err := u.menu.GetItems(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	var subtotal float64
	for _, it := range req.Items {
		mi, ok := menuItems[it.MenuItemID]
		if !ok || !mi.Available {
			return nil, nil, fmt.Errorf("menu item %d: %w", it.MenuItemID, domainErrors.ErrMenuItemUnavailable)
		}
		item := model.OrderItem{
			MenuItemID:     mi.ID,
			Name:           mi.Name,
			UnitPrice:      mi.Price,
			Quantity:       it.Quantity,
			Customizations: it.Customizations,
			Instructions:   it.Instructions,
		}
		subtotal += item.LineTotal()
		items = append(items, item)
	}
	subtotal = model.RoundCents(subtotal)

	now := time.Now()

	var discount float64
	var promoID *int64
	if req.PromoCode != "" {
		promo, err := u.promos.GetByCode(ctx, req.PromoCode)
		if err != nil {
			if errors.Is(err, domainErrors.ErrNotFound) {
				return nil, nil, domainErrors.ErrPromoInvalid
			}
			return nil, nil, err
		}
		if !promo.UsableAt(now, subtotal) {
			return nil, nil, domainErrors.ErrPromoInvalid
		}
		discount = promo.DiscountFor(subtotal)
		promoID = &promo.ID
	}

	order := &model.Order{
		RestaurantID:  req.RestaurantID,
		CustomerID:    req.CustomerID,
		Fulfillment:   req.Fulfillment,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      subtotal,
		TaxAmount:     model.RoundCents(subtotal * u.pricing.TaxRate),
		ServiceFee:    model.RoundCents(u.pricing.ServiceFee),
		TipAmount:     model.RoundCents(req.TipAmount),
		Discount:      discount,
		PromoCodeID:   promoID,
		PickupTime:    req.PickupTime,
	}
	if req.Fulfillment == model.FulfillmentDelivery {
		order.DeliveryFee = model.RoundCents(u.pricing.DeliveryFee)
		order.DeliveryAddressID = req.DeliveryAddressID
	}
	if req.TableNumber != "" {
		order.TableNumber = &req.TableNumber
	}
	if req.ContactPhone != "" {
		order.ContactPhone = &req.ContactPhone
	}
	order.Total = model.RoundCents(order.Subtotal + order.TaxAmount + order.ServiceFee +
		order.TipAmount + order.DeliveryFee - order.Discount)

	// Retry on the rare order-number collision.
	for attempt := 0; attempt < createAttempts; attempt++ {
		order.Number = generateOrderNumber(now)
		stored, storedItems, err := u.orders.Create(ctx, order, items)
		if err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) && attempt < createAttempts-1 {
				continue
			}
			return nil, nil, err
		}
		return stored, storedItems, nil
	}
	return nil, nil, domainErrors.ErrAlreadyExists
}

// Get returns the hydrated order; customers may only read their own.
func (u *OrderUseCase) Get(ctx context.Context, orderID, callerID int64, staff bool) (*model.Order, []model.OrderItem, error) {
	order, items, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !staff && order.CustomerID != callerID {
		return nil, nil, domainErrors.ErrForbidden
	}
	return order, items, nil
}

// History returns the transition timeline; same visibility rule as Get.
func (u *OrderUseCase) History(ctx context.Context, orderID, callerID int64, staff bool) ([]model.StatusHistory, error) {
	order, _, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && order.CustomerID != callerID {
		return nil, domainErrors.ErrForbidden
	}
	return u.orders.History(ctx, orderID)
}

// ListByCustomer returns the caller's orders, newest first.
func (u *OrderUseCase) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	return u.orders.ListByCustomer(ctx, customerID, limit)
}

// ListRecent returns the restaurant's latest orders for staff views.
func (u *OrderUseCase) ListRecent(ctx context.Context, restaurantID int64, limit int) ([]model.Order, error) {
	return u.orders.ListRecent(ctx, restaurantID, limit)
}

func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), rand.Intn(1_000_000))
}
