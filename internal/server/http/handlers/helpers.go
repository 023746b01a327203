package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okateva/resto/internal/adapter/payment"
	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	pkgAuth "github.com/okateva/resto/internal/pkg/auth"
	"github.com/okateva/resto/internal/server/http/dto"
	"github.com/okateva/resto/internal/server/http/middleware"
)

// CurrentUserID extracts the authenticated user identifier from context.
func CurrentUserID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

// CurrentRole extracts the authenticated user's role from context.
func CurrentRole(c *gin.Context) pkgAuth.Role {
	val, ok := c.Get(middleware.RoleContextKey)
	if !ok {
		return pkgAuth.RoleCustomer
	}
	role, ok := val.(pkgAuth.Role)
	if !ok {
		return pkgAuth.RoleCustomer
	}
	return role
}

// writeError maps domain errors to HTTP statuses with a JSON body.
func writeError(c *gin.Context, err error) {
	var validation domainErrors.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validation.Error(), Field: validation.Field})
		return
	}

	var transition domainErrors.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: transition.Error()})
		return
	}

	var provider payment.ProviderError
	if errors.As(err, &provider) {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "payment provider rejected the charge"})
		return
	}

	switch {
	case errors.Is(err, domainErrors.ErrEmptyOrder),
		errors.Is(err, domainErrors.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrOutOfStock),
		errors.Is(err, domainErrors.ErrMenuItemUnavailable),
		errors.Is(err, domainErrors.ErrPromoInvalid):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func toOrderResponse(order *model.Order, items []model.OrderItem) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              order.ID,
		Number:          order.Number,
		RestaurantID:    order.RestaurantID,
		FulfillmentType: string(order.Fulfillment),
		Status:          string(order.Status),
		PaymentStatus:   string(order.PaymentStatus),
		PaymentMethod:   string(order.PaymentMethod),
		TransactionID:   order.TransactionID,
		Subtotal:        order.Subtotal,
		TaxAmount:       order.TaxAmount,
		ServiceFee:      order.ServiceFee,
		TipAmount:       order.TipAmount,
		DeliveryFee:     order.DeliveryFee,
		Discount:        order.Discount,
		Total:           order.Total,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(it))
	}
	return resp
}

func toOrderItemResponse(item model.OrderItem) dto.OrderItemResponse {
	out := dto.OrderItemResponse{
		MenuItemID:   item.MenuItemID,
		Name:         item.Name,
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
		Instructions: item.Instructions,
	}
	for _, cz := range item.Customizations {
		out.Customizations = append(out.Customizations, dto.CustomizationRequest{Name: cz.Name, Price: cz.Price})
	}
	return out
}
