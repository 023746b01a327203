package model

import "time"

// Well-known actors for status history entries. Staff transitions record
// the staff identifier instead.
const (
	ActorSystem   = "SYSTEM"
	ActorCustomer = "CUSTOMER"
)

// StatusHistory is an append-only audit row, one per transition.
type StatusHistory struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	Note      string
	Actor     string
	CreatedAt time.Time
}
