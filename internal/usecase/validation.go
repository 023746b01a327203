package usecase

import (
	"time"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
)

// CreateOrderItemRequest is one requested line item. Customization prices
// are display hints from the menu UI; they feed the authoritative
// server-side subtotal together with the stored menu price.
type CreateOrderItemRequest struct {
	MenuItemID     int64
	Quantity       int
	Customizations []model.Customization
	Instructions   string
}

// CreateOrderRequest is the validated input of order creation.
type CreateOrderRequest struct {
	RestaurantID  int64
	CustomerID    int64
	Fulfillment   model.FulfillmentType
	PaymentMethod model.PaymentMethod
	Items         []CreateOrderItemRequest
	TipAmount     float64
	PromoCode     string

	TableNumber       string
	PickupTime        *time.Time
	DeliveryAddressID *int64
	ContactPhone      string
}

// ValidateOrderRequest checks structural and fulfillment-specific rules
// before any pricing or persistence happens.
func ValidateOrderRequest(req CreateOrderRequest) error {
	if !req.Fulfillment.IsValid() {
		return domainErrors.ValidationError{Field: "fulfillment", Reason: "must be DINE_IN, PICKUP or DELIVERY"}
	}
	if !req.PaymentMethod.IsValid() {
		return domainErrors.ValidationError{Field: "payment_method", Reason: "must be CARD, WALLET or CASH"}
	}
	if len(req.Items) == 0 {
		return domainErrors.ErrEmptyOrder
	}
	for _, it := range req.Items {
		if it.MenuItemID <= 0 {
			return domainErrors.ValidationError{Field: "items", Reason: "menu item id is required"}
		}
		if it.Quantity <= 0 {
			return domainErrors.ValidationError{Field: "items", Reason: "quantity must be positive"}
		}
		for _, c := range it.Customizations {
			if c.Price < 0 {
				return domainErrors.ValidationError{Field: "items", Reason: "customization price must be non-negative"}
			}
		}
	}
	if req.TipAmount < 0 {
		return domainErrors.ErrInvalidAmount
	}

	switch req.Fulfillment {
	case model.FulfillmentDineIn:
		if req.TableNumber == "" {
			return domainErrors.ValidationError{Field: "table_number", Reason: "required for dine-in orders"}
		}
	case model.FulfillmentPickup:
		if req.PickupTime == nil {
			return domainErrors.ValidationError{Field: "pickup_time", Reason: "required for pickup orders"}
		}
	case model.FulfillmentDelivery:
		if req.DeliveryAddressID == nil {
			return domainErrors.ValidationError{Field: "delivery_address_id", Reason: "required for delivery orders"}
		}
		if req.ContactPhone == "" {
			return domainErrors.ValidationError{Field: "contact_phone", Reason: "required for delivery orders"}
		}
	}

	return nil
}
