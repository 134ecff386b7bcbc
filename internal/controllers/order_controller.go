package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OrderController handles HTTP requests related to orders and deliveries
type OrderController interface {
	// CreateOrder places a customer order
	CreateOrder(c *gin.Context)
	// GetOrder returns an order for order tracking
	GetOrder(c *gin.Context)
	// ListOrders returns the orders visible to the admin
	ListOrders(c *gin.Context)
	// GetAdminOrder returns one order visible to the admin
	GetAdminOrder(c *gin.Context)
	// UpdateOrderStatus moves an order through its lifecycle
	UpdateOrderStatus(c *gin.Context)
	// ListDeliveries returns the deliveries visible to the admin
	ListDeliveries(c *gin.Context)
}

type orderController struct {
	orders services.OrderService
}

func NewOrderController(orders services.OrderService) OrderController {
	return &orderController{orders: orders}
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder godoc
// @Summary Place an order
// @Description Create an order. Prices are taken from the catalog; all items must belong to one restaurant.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderInput true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/orders [post]
func (oc *orderController) CreateOrder(c *gin.Context) {
	var in services.CreateOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder godoc
// @Summary Track an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/orders/{id} [get]
func (oc *orderController) GetOrder(c *gin.Context) {
	order, err := oc.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListOrders godoc
// @Summary List orders
// @Description Newest first. Restaurant admins only see their own restaurant.
// @Tags admin-orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Param limit query int false "Maximum number of orders"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders [get]
func (oc *orderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Type:   models.OrderType(c.Query("type")),
	}
	if filter.Status != "" {
		if _, err := models.ParseOrderStatus(string(filter.Status)); err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidStatus, err.Error()))
			return
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	orders, err := oc.orders.ListOrders(c.Request.Context(), middleware.CurrentScope(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetAdminOrder godoc
// @Summary Get an order
// @Tags admin-orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders/{id} [get]
func (oc *orderController) GetAdminOrder(c *gin.Context) {
	order, err := oc.orders.GetScopedOrder(c.Request.Context(), middleware.CurrentScope(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus godoc
// @Summary Change order status
// @Description Applies one transition of the order lifecycle. Setting the current status again is a no-op.
// @Tags admin-orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body updateStatusRequest true "New status"
// @Success 200 {object} models.Order
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/orders/{id}/status [patch]
func (oc *orderController) UpdateOrderStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.orders.UpdateOrderStatus(c.Request.Context(), middleware.CurrentScope(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// ListDeliveries godoc
// @Summary List deliveries
// @Tags admin-orders
// @Produce json
// @Success 200 {array} models.Delivery
// @Security BearerAuth
// @Router /api/v1/admin/deliveries [get]
func (oc *orderController) ListDeliveries(c *gin.Context) {
	deliveries, err := oc.orders.ListDeliveries(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}
