package payment

import (
	"context"
	"fmt"
)

// Provider names a payment channel as it appears in API routes.
type Provider string

const (
	ProviderCard   Provider = "card"
	ProviderWallet Provider = "wallet"
	ProviderCash   Provider = "cash"
)

// ChargeRequest carries everything an adapter needs to create a charge.
// CorrelationID is the local order id; providers echo it back in webhooks
// and it is the join key between provider state and local state. It is set
// here, at charge creation, and never altered.
type ChargeRequest struct {
	OrderID       int64
	OrderNumber   string
	Amount        float64
	Currency      string
	CorrelationID string
	Reference     string
}

// ChargeResult is the normalized outcome of charge creation.
type ChargeResult struct {
	Provider     Provider
	ExternalID   string
	ClientSecret string
	ApprovalURL  string
	Simulated    bool
}

// Adapter creates provider-side charges. Implementations must honor context
// deadlines; a timed-out call leaves the order untouched and retryable.
type Adapter interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// Registry maps providers to their adapters.
type Registry map[Provider]Adapter

// ProviderError reports a non-2xx answer from a payment provider.
type ProviderError struct {
	Provider Provider
	Status   int
	Body     string
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("%s provider returned %d: %s", e.Provider, e.Status, e.Body)
}
