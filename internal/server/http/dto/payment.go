package dto

// CreateChargeRequest names the order a charge is created for. The provider
// comes from the request path.
type CreateChargeRequest struct {
	OrderID int64 `json:"order_id"`
}

// ChargeResponse is the normalized result of charge creation.
type ChargeResponse struct {
	Provider     string `json:"provider"`
	ExternalID   string `json:"external_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApprovalURL  string `json:"approval_url,omitempty"`
	Simulated    bool   `json:"simulated,omitempty"`
}

// CardWebhookEvent is the card processor's event envelope. The order id is
// echoed back from the metadata attached at intent creation.
type CardWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// WalletWebhookEvent is the wallet processor's event envelope. CustomID is
// the correlation id set at order creation.
type WalletWebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"`
	} `json:"resource"`
}
