package dto

import "time"

// CustomizationRequest is one selected modifier on a line item.
type CustomizationRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderItemRequest is one requested line item.
type OrderItemRequest struct {
	MenuItemID     int64                  `json:"menu_item_id"`
	Quantity       int                    `json:"quantity"`
	Customizations []CustomizationRequest `json:"customizations,omitempty"`
	Instructions   string                 `json:"instructions,omitempty"`
}

// CreateOrderRequest is the POST /api/orders payload. Any client-submitted
// totals are ignored; pricing is computed server-side.
type CreateOrderRequest struct {
	RestaurantID      int64              `json:"restaurant_id"`
	FulfillmentType   string             `json:"fulfillment_type"`
	PaymentMethod     string             `json:"payment_method"`
	Items             []OrderItemRequest `json:"items"`
	TipAmount         float64            `json:"tip_amount"`
	PromoCode         string             `json:"promo_code,omitempty"`
	TableNumber       string             `json:"table_number,omitempty"`
	PickupTime        *time.Time         `json:"pickup_time,omitempty"`
	DeliveryAddressID *int64             `json:"delivery_address_id,omitempty"`
	ContactPhone      string             `json:"contact_phone,omitempty"`
}

// UpdateOrderRequest is the PATCH /api/orders/:id payload. Staff send a
// target status with an optional note; customers send only the status
// (which must be CANCELLED).
type UpdateOrderRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// OrderItemResponse mirrors a stored line item snapshot.
type OrderItemResponse struct {
	MenuItemID     int64                  `json:"menu_item_id"`
	Name           string                 `json:"name"`
	UnitPrice      float64                `json:"unit_price"`
	Quantity       int                    `json:"quantity"`
	Customizations []CustomizationRequest `json:"customizations,omitempty"`
	Instructions   string                 `json:"instructions,omitempty"`
}

// OrderResponse is the hydrated order returned to callers.
type OrderResponse struct {
	ID              int64               `json:"id"`
	Number          string              `json:"number"`
	RestaurantID    int64               `json:"restaurant_id"`
	FulfillmentType string              `json:"fulfillment_type"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	PaymentMethod   string              `json:"payment_method"`
	TransactionID   *string             `json:"transaction_id,omitempty"`
	Subtotal        float64             `json:"subtotal"`
	TaxAmount       float64             `json:"tax_amount"`
	ServiceFee      float64             `json:"service_fee"`
	TipAmount       float64             `json:"tip_amount"`
	DeliveryFee     float64             `json:"delivery_fee"`
	Discount        float64             `json:"discount"`
	Total           float64             `json:"total"`
	Items           []OrderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// HistoryEntryResponse is one audit-log row.
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse carries a user-readable error.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
