package model

import (
	"math"
	"time"
)

// OrderStatus describes the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusAccepted       OrderStatus = "ACCEPTED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusReady          OrderStatus = "READY"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
	OrderStatusRejected       OrderStatus = "REJECTED"
)

// IsTerminal reports whether no further fulfillment transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// IsValid reports whether the value is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusPreparing,
		OrderStatusReady, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRejected:
		return true
	}
	return false
}

// PaymentStatus tracks money movement independently from fulfillment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod identifies the provider responsible for collecting payment.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCash   PaymentMethod = "CASH"
)

// IsValid reports whether the value is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCash:
		return true
	}
	return false
}

// FulfillmentType is fixed per order at creation.
type FulfillmentType string

const (
	FulfillmentDineIn   FulfillmentType = "DINE_IN"
	FulfillmentPickup   FulfillmentType = "PICKUP"
	FulfillmentDelivery FulfillmentType = "DELIVERY"
)

// IsValid reports whether the value is a known fulfillment type.
func (f FulfillmentType) IsValid() bool {
	switch f {
	case FulfillmentDineIn, FulfillmentPickup, FulfillmentDelivery:
		return true
	}
	return false
}

// Order describes one customer transaction. Orders are never deleted;
// cancellation is a status, not a row removal.
type Order struct {
	ID            int64
	Number        string
	RestaurantID  int64
	CustomerID    int64
	Fulfillment   FulfillmentType
	Status        OrderStatus
	PaymentStatus PaymentStatus
	PaymentMethod PaymentMethod
	TransactionID *string

	Subtotal    float64
	TaxAmount   float64
	ServiceFee  float64
	TipAmount   float64
	DeliveryFee float64
	Discount    float64
	Total       float64

	PromoCodeID       *int64
	DeliveryAddressID *int64
	TableNumber       *string
	PickupTime        *time.Time
	ContactPhone      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReconcilesTotal checks the money breakdown invariant:
// total = subtotal + tax + service fee + tip + delivery fee - discount.
func (o *Order) ReconcilesTotal() bool {
	expected := RoundCents(o.Subtotal + o.TaxAmount + o.ServiceFee + o.TipAmount + o.DeliveryFee - o.Discount)
	return math.Abs(expected-o.Total) < 0.005
}

// RoundCents normalizes a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
