package handler

import (
	orderingapp "github.com/crm/backend/internal/application/ordering"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler handles order API endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderingapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderingapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GetByID godoc
// @ID           getOrderById
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByEmNumber godoc
// @ID           getOrderByEmNumber
// @Summary      Get order by EM number
// @Description  Look up an order by its human-facing EM number
// @Tags         orders
// @Produce      json
// @Param        emNumber path string true "EM number"
// @Success      200 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/em/{emNumber} [get]
func (h *OrderHandler) GetByEmNumber(c *gin.Context) {
	emNumber := c.Param("emNumber")
	if emNumber == "" {
		h.BadRequest(c, "EM number is required")
		return
	}

	order, err := h.orderService.GetOrderByEmNumber(c.Request.Context(), emNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Retrieve a paginated list of orders with optional filtering
// @Tags         orders
// @Produce      json
// @Param        search query string false "Search term (EM number, tracking number)"
// @Param        status query string false "Order status" Enums(ONGOING, DELIVERED, CANCELLED)
// @Param        country query string false "Country"
// @Param        sales_staff_id query string false "Sales staff ID" format(uuid)
// @Param        customer_id query string false "Customer ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderingapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateOrder
// @Summary      Update an order
// @Description  Update shipping details, value, notes, or status; nil fields are left unchanged
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.UpdateOrderRequest true "Order update request"
// @Success      200 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderingapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// MarkDelivered godoc
// @ID           markOrderDelivered
// @Summary      Mark an order as delivered
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/deliver [post]
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.orderService.MarkDelivered(c.Request.Context(), orderID, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel an order
// @Description  Cancel an order with a mandatory reason
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderingapp.CancelOrderRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[orderingapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderingapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, req, getActorID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Stats godoc
// @ID           getOrderStats
// @Summary      Get order counts by status
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[orderingapp.OrderStatsResponse]
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/stats [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orderService.GetStats(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
