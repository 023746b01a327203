package payment

import "context"

// CashAdapter performs no external call. Cash is collected by fulfillment
// staff in person and the payment is marked completed when the order is
// accepted, so charge creation only acknowledges the method.
type CashAdapter struct{}

// NewCashAdapter constructs CashAdapter.
func NewCashAdapter() *CashAdapter {
	return &CashAdapter{}
}

// CreateCharge acknowledges the cash method without contacting anyone.
func (a *CashAdapter) CreateCharge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	return &ChargeResult{
		Provider:   ProviderCash,
		ExternalID: "cash-" + req.OrderNumber,
	}, nil
}
