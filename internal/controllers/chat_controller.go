package controllers

import (
	"io"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/middleware"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/services"
	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 15 * time.Second

// ChatController serves order chats to customers and admins, and the order event stream
type ChatController interface {
	GetMessages(c *gin.Context)
	PostCustomerMessage(c *gin.Context)
	ListChats(c *gin.Context)
	GetAdminMessages(c *gin.Context)
	PostAdminMessage(c *gin.Context)
	StreamOrderEvents(c *gin.Context)
}

type chatController struct {
	chats  services.ChatService
	orders services.OrderService
}

func NewChatController(chats services.ChatService, orders services.OrderService) ChatController {
	return &chatController{chats: chats, orders: orders}
}

type postMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetMessages godoc
// @Summary Fetch chat messages of an order
// @Description Oldest first. Returns an empty list when no message was posted yet.
// @Tags chats
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {array} models.Message
// @Router /api/v1/public/chats/{orderId} [get]
func (cc *chatController) GetMessages(c *gin.Context) {
	messages, err := cc.chats.FetchMessages(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// PostCustomerMessage godoc
// @Summary Post a customer message
// @Tags chats
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param message body postMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/chats/{orderId} [post]
func (cc *chatController) PostCustomerMessage(c *gin.Context) {
	cc.post(c, models.SenderCustomer)
}

// ListChats godoc
// @Summary List order chats
// @Description Most recently active first, with the last message of each chat
// @Tags admin-chats
// @Produce json
// @Success 200 {array} services.ChatSummary
// @Security BearerAuth
// @Router /api/v1/admin/chats [get]
func (cc *chatController) ListChats(c *gin.Context) {
	chats, err := cc.chats.ListChats(c.Request.Context(), middleware.CurrentScope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetAdminMessages godoc
// @Summary Fetch chat messages of an order
// @Tags admin-chats
// @Produce json
// @Param orderId path string true "Order ID"
// @Success 200 {array} models.Message
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/chats/{orderId} [get]
func (cc *chatController) GetAdminMessages(c *gin.Context) {
	if !cc.checkScope(c) {
		return
	}
	cc.GetMessages(c)
}

// PostAdminMessage godoc
// @Summary Reply to a customer
// @Tags admin-chats
// @Accept json
// @Produce json
// @Param orderId path string true "Order ID"
// @Param message body postMessageRequest true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/admin/chats/{orderId} [post]
func (cc *chatController) PostAdminMessage(c *gin.Context) {
	if !cc.checkScope(c) {
		return
	}
	cc.post(c, models.SenderAdmin)
}

// checkScope answers 404 when the order is outside the admin's restaurant
func (cc *chatController) checkScope(c *gin.Context) bool {
	if _, err := cc.orders.GetScopedOrder(c.Request.Context(), middleware.CurrentScope(c), c.Param("orderId")); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

func (cc *chatController) post(c *gin.Context, sender models.SenderRole) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	message, err := cc.chats.PostMessage(c.Request.Context(), c.Param("orderId"), req.Content, sender)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// StreamOrderEvents godoc
// @Summary Stream order events
// @Description Server-sent events carrying new chat messages ("message") and status changes ("status") of one order
// @Tags orders
// @Produce text/event-stream
// @Param id path string true "Order ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/orders/{id}/events [get]
func (cc *chatController) StreamOrderEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events, cancel, err := cc.chats.Subscribe(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev.Data)
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
