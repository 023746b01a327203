package model

// MenuItem carries the fields the order core needs: pricing, availability
// and inventory tracking. When TrackInventory is false the stock quantity
// is ignored and treated as unlimited.
type MenuItem struct {
	ID             int64
	RestaurantID   int64
	Name           string
	Price          float64
	Available      bool
	TrackInventory bool
	StockQuantity  *int
}
