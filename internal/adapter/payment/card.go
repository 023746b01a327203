package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CardAdapter creates payment intents with the card processor. The server
// never sees raw card data: the returned client secret lets the caller's UI
// confirm the payment directly with the provider.
type CardAdapter struct {
	apiKey     string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type cardIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// NewCardAdapter creates the card processor adapter. An empty API key puts
// the adapter into simulated mode for development and staging.
func NewCardAdapter(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) (*CardAdapter, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse card api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("card api url must be absolute")
	}
	return &CardAdapter{
		apiKey:  apiKey,
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Simulated reports whether the adapter runs without real credentials.
func (a *CardAdapter) Simulated() bool {
	return a.apiKey == ""
}

// CreateCharge creates a provider-side payment intent.
func (a *CardAdapter) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if a.Simulated() {
		a.logger.Warn("card credentials absent, returning simulated charge",
			slog.String("order", req.OrderNumber))
		return &ChargeResult{
			Provider:     ProviderCard,
			ExternalID:   "sim_pi_" + req.Reference,
			ClientSecret: "sim_secret_" + req.Reference,
			Simulated:    true,
		}, nil
	}

	endpoint := *a.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + "/payment_intents"

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(int64(math.Round(req.Amount*100)), 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("metadata[order_id]", strconv.FormatInt(req.OrderID, 10))
	form.Set("metadata[order_number]", req.OrderNumber)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Error("card intent creation failed",
			slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return nil, ProviderError{Provider: ProviderCard, Status: resp.StatusCode, Body: string(body)}
	}

	var data cardIntentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, err
	}

	return &ChargeResult{
		Provider:     ProviderCard,
		ExternalID:   data.ID,
		ClientSecret: data.ClientSecret,
	}, nil
}
