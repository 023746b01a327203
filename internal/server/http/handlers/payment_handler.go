package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okateva/resto/internal/adapter/payment"
	"github.com/okateva/resto/internal/server/http/dto"
	"github.com/okateva/resto/internal/server/http/middleware"
)

const signatureHeader = "X-Webhook-Signature"

// PaymentHandler manages charge creation and provider webhooks.
type PaymentHandler struct {
	facade       RestaurantFacade
	cardSecret   string
	walletSecret string
}

// NewPaymentHandler constructs PaymentHandler. Empty secrets disable
// signature verification for the corresponding provider.
func NewPaymentHandler(facade RestaurantFacade, cardSecret, walletSecret string) *PaymentHandler {
	return &PaymentHandler{facade: facade, cardSecret: cardSecret, walletSecret: walletSecret}
}

// CreateCharge handles POST /api/payments/:provider/create-intent and
// /create-order. The provider comes from the path, the order from the body.
func (h *PaymentHandler) CreateCharge(c *gin.Context) {
	provider := payment.Provider(c.Param("provider"))

	var req dto.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}
	if req.OrderID <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "order_id is required"})
		return
	}

	callerID := CurrentUserID(c)
	staff := CurrentRole(c).Staff()

	result, err := h.facade.CreateCharge(c.Request.Context(), provider, req.OrderID, callerID, staff)
	middleware.RecordOrderOperation("charge", err == nil)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ChargeResponse{
		Provider:     string(result.Provider),
		ExternalID:   result.ExternalID,
		ClientSecret: result.ClientSecret,
		ApprovalURL:  result.ApprovalURL,
		Simulated:    result.Simulated,
	})
}

// Webhook handles POST /api/payments/:provider/webhook, dispatching on the
// provider path segment.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	switch payment.Provider(c.Param("provider")) {
	case payment.ProviderCard:
		h.cardWebhook(c)
	case payment.ProviderWallet:
		h.walletWebhook(c)
	default:
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "unknown payment provider"})
	}
}

// cardWebhook reconciles card processor events. Events that match nothing
// locally still answer 200 so the provider stops retrying.
func (h *PaymentHandler) cardWebhook(c *gin.Context) {
	body, ok := h.verifiedBody(c, h.cardSecret)
	if !ok {
		return
	}

	var event dto.CardWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed event"})
		return
	}

	orderID, err := strconv.ParseInt(event.Data.Object.Metadata["order_id"], 10, 64)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = h.facade.ReconcileCaptured(c.Request.Context(), orderID, event.Data.Object.ID, "card webhook")
	case "payment_intent.payment_failed":
		err = h.facade.ReconcileDenied(c.Request.Context(), orderID)
	case "charge.refunded":
		err = h.facade.ReconcileRefunded(c.Request.Context(), orderID)
	default:
		c.Status(http.StatusOK)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.Status(http.StatusOK)
}

func (h *PaymentHandler) walletWebhook(c *gin.Context) {
	body, ok := h.verifiedBody(c, h.walletSecret)
	if !ok {
		return
	}

	var event dto.WalletWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed event"})
		return
	}

	orderID, err := strconv.ParseInt(event.Resource.CustomID, 10, 64)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		err = h.facade.ReconcileCaptured(c.Request.Context(), orderID, event.Resource.ID, "wallet webhook")
	case "PAYMENT.CAPTURE.DENIED":
		err = h.facade.ReconcileDenied(c.Request.Context(), orderID)
	case "PAYMENT.CAPTURE.REFUNDED":
		err = h.facade.ReconcileRefunded(c.Request.Context(), orderID)
	default:
		c.Status(http.StatusOK)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.Status(http.StatusOK)
}

// verifiedBody reads the raw body and, when a secret is configured, checks
// its hex-encoded HMAC-SHA256 signature.
func (h *PaymentHandler) verifiedBody(c *gin.Context, secret string) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
		return nil, false
	}
	if secret == "" {
		return body, true
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	provided := c.GetHeader(signatureHeader)
	if provided == "" || !hmac.Equal([]byte(expected), []byte(provided)) {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid webhook signature"})
		return nil, false
	}
	return body, true
}
