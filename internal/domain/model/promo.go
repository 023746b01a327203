package model

import "time"

// PromoType selects how a promo code discounts an order.
type PromoType string

const (
	PromoTypePercent PromoType = "PERCENT"
	PromoTypeFixed   PromoType = "FIXED"
)

// PromoCode is a discount rule. Usage count only ever grows: a code is
// spent at order creation and is not returned on cancellation or refund.
type PromoCode struct {
	ID          int64
	Code        string
	Type        PromoType
	Value       float64
	MinOrder    float64
	MaxDiscount *float64
	UsageLimit  *int
	UsageCount  int
	ValidFrom   time.Time
	ValidUntil  time.Time
	Active      bool
}

// UsableAt reports whether the code can be applied at the given moment
// for the given subtotal.
func (p *PromoCode) UsableAt(now time.Time, subtotal float64) bool {
	if !p.Active {
		return false
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return false
	}
	if subtotal < p.MinOrder {
		return false
	}
	if p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit {
		return false
	}
	return true
}

// DiscountFor computes the discount amount for a subtotal, honoring the cap.
func (p *PromoCode) DiscountFor(subtotal float64) float64 {
	var discount float64
	switch p.Type {
	case PromoTypePercent:
		discount = subtotal * p.Value / 100
	case PromoTypeFixed:
		discount = p.Value
	}
	if p.MaxDiscount != nil && discount > *p.MaxDiscount {
		discount = *p.MaxDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}
	return RoundCents(discount)
}
