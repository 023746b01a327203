package model

import "time"

// Customer aggregates are derived values maintained in lockstep with the
// order lifecycle, not sources of truth.
type Customer struct {
	ID          int64
	TotalOrders int
	TotalSpent  float64
	CreatedAt   time.Time
}
