package model

// Customization is a flattened name/price modifier chosen for a line item.
type Customization struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderItem is a line item snapshot. Name and unit price are frozen at
// order time so later menu edits never affect historical orders.
type OrderItem struct {
	ID             int64
	OrderID        int64
	MenuItemID     int64
	Name           string
	UnitPrice      float64
	Quantity       int
	Customizations []Customization
	Instructions   string
}

// LineTotal returns the snapshot price of the line including customizations.
func (i *OrderItem) LineTotal() float64 {
	unit := i.UnitPrice
	for _, c := range i.Customizations {
		unit += c.Price
	}
	return RoundCents(unit * float64(i.Quantity))
}
