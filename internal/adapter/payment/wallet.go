package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WalletAdapter creates orders with the wallet processor. The client is
// redirected to the returned approval URL; the provider reports the outcome
// later through a webhook carrying our correlation id.
type WalletAdapter struct {
	clientID   string
	secret     string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type walletOrderRequest struct {
	Intent      string       `json:"intent"`
	CustomID    string       `json:"custom_id"`
	ReferenceID string       `json:"reference_id"`
	Amount      walletAmount `json:"amount"`
}

type walletAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type walletOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// NewWalletAdapter creates the wallet processor adapter. Missing credentials
// put the adapter into simulated mode.
func NewWalletAdapter(clientID, secret, baseURL string, timeout time.Duration, logger *slog.Logger) (*WalletAdapter, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse wallet api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("wallet api url must be absolute")
	}
	return &WalletAdapter{
		clientID: clientID,
		secret:   secret,
		baseURL:  parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Simulated reports whether the adapter runs without real credentials.
func (a *WalletAdapter) Simulated() bool {
	return a.clientID == "" || a.secret == ""
}

// CreateCharge creates a provider-side order and returns the approval URL.
func (a *WalletAdapter) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if a.Simulated() {
		a.logger.Warn("wallet credentials absent, returning simulated charge",
			slog.String("order", req.OrderNumber))
		return &ChargeResult{
			Provider:    ProviderWallet,
			ExternalID:  "sim_wo_" + req.Reference,
			ApprovalURL: "https://wallet.example/approve/sim_wo_" + req.Reference,
			Simulated:   true,
		}, nil
	}

	endpoint := *a.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/checkout/orders"

	payload := walletOrderRequest{
		Intent:      "CAPTURE",
		CustomID:    req.CorrelationID,
		ReferenceID: req.Reference,
		Amount: walletAmount{
			CurrencyCode: strings.ToUpper(req.Currency),
			Value:        strconv.FormatFloat(req.Amount, 'f', 2, 64),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(a.clientID, a.secret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Request-Id", req.Reference)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Error("wallet order creation failed",
			slog.Int("status", resp.StatusCode), slog.String("body", string(respBody)))
		return nil, ProviderError{Provider: ProviderWallet, Status: resp.StatusCode, Body: string(respBody)}
	}

	var data walletOrderResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, err
	}

	result := &ChargeResult{Provider: ProviderWallet, ExternalID: data.ID}
	for _, link := range data.Links {
		if link.Rel == "approve" {
			result.ApprovalURL = link.Href
			break
		}
	}
	return result, nil
}
