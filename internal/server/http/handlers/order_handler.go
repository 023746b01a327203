package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/okateva/resto/internal/domain/errors"
	"github.com/okateva/resto/internal/domain/model"
	"github.com/okateva/resto/internal/server/http/dto"
	"github.com/okateva/resto/internal/server/http/middleware"
	"github.com/okateva/resto/internal/usecase"
)

const defaultListLimit = 50

// OrderHandler manages order lifecycle endpoints.
type OrderHandler struct {
	facade RestaurantFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade RestaurantFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	order, items, err := h.facade.CreateOrder(c.Request.Context(), toCreateRequest(req, CurrentUserID(c)))
	middleware.RecordOrderOperation("create", err == nil)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, items))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	order, items, err := h.facade.Order(c.Request.Context(), orderID, CurrentUserID(c), CurrentRole(c).Staff())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, items))
}

// List handles GET /api/orders. Customers see their own orders; staff see
// recent orders for the restaurant given in the query.
func (h *OrderHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit", Field: "limit"})
			return
		}
		limit = parsed
	}

	var (
		orders []model.Order
		err    error
	)
	if CurrentRole(c).Staff() {
		restaurantID, parseErr := strconv.ParseInt(c.Query("restaurant_id"), 10, 64)
		if parseErr != nil || restaurantID <= 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid restaurant id", Field: "restaurant_id"})
			return
		}
		orders, err = h.facade.RecentOrders(c.Request.Context(), restaurantID, limit)
	} else {
		orders, err = h.facade.OrdersByCustomer(c.Request.Context(), CurrentUserID(c), limit)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i], nil))
	}
	c.JSON(http.StatusOK, response)
}

// Update handles PATCH /api/orders/:id. Staff may move the order along the
// lifecycle; customers may only request cancellation.
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	next := model.OrderStatus(req.Status)
	if !next.IsValid() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unknown order status", Field: "status"})
		return
	}

	var (
		order *model.Order
		err   error
	)
	if CurrentRole(c).Staff() {
		staffID := strconv.FormatInt(CurrentUserID(c), 10)
		order, err = h.facade.TransitionOrder(c.Request.Context(), orderID, next, req.Note, staffID)
	} else {
		if next != model.OrderStatusCancelled {
			writeError(c, domainErrors.ErrForbidden)
			return
		}
		order, err = h.facade.CancelOrder(c.Request.Context(), orderID, CurrentUserID(c))
	}
	middleware.RecordOrderOperation("transition", err == nil)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, nil))
}

// History handles GET /api/orders/:id/history.
func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := pathOrderID(c)
	if !ok {
		return
	}

	entries, err := h.facade.OrderHistory(c.Request.Context(), orderID, CurrentUserID(c), CurrentRole(c).Staff())
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.HistoryEntryResponse{
			Status:    string(e.Status),
			Note:      e.Note,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

func pathOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid order id", Field: "id"})
		return 0, false
	}
	return id, true
}

func toCreateRequest(req dto.CreateOrderRequest, customerID int64) usecase.CreateOrderRequest {
	out := usecase.CreateOrderRequest{
		RestaurantID:      req.RestaurantID,
		CustomerID:        customerID,
		Fulfillment:       model.FulfillmentType(req.FulfillmentType),
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		TipAmount:         req.TipAmount,
		PromoCode:         req.PromoCode,
		TableNumber:       req.TableNumber,
		PickupTime:        req.PickupTime,
		DeliveryAddressID: req.DeliveryAddressID,
		ContactPhone:      req.ContactPhone,
	}
	for _, it := range req.Items {
		item := usecase.CreateOrderItemRequest{
			MenuItemID:   it.MenuItemID,
			Quantity:     it.Quantity,
			Instructions: it.Instructions,
		}
		for _, cz := range it.Customizations {
			item.Customizations = append(item.Customizations, model.Customization{Name: cz.Name, Price: cz.Price})
		}
		out.Items = append(out.Items, item)
	}
	return out
}
