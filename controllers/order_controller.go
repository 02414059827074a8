package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/middleware"
	"github.com/partspoint/autoparts-backend/models"
	"github.com/partspoint/autoparts-backend/services"
)

type OrderController struct {
	Service     services.OrderService
	DeliveryFee float64
}

func NewOrderController(service services.OrderService, deliveryFee float64) *OrderController {
	return &OrderController{Service: service, DeliveryFee: deliveryFee}
}

// orderResponse decorates an order with the flat delivery fee. The fee is
// a presentation concern; total_amount stays the sum of line subtotals.
type orderResponse struct {
	models.Order
	DeliveryFee float64 `json:"delivery_fee"`
	GrandTotal  float64 `json:"grand_total"`
}

func (oc *OrderController) respond(order models.Order) orderResponse {
	return orderResponse{
		Order:       order,
		DeliveryFee: oc.DeliveryFee,
		GrandTotal:  order.TotalAmount + oc.DeliveryFee,
	}
}

// CreateOrder places an order from the caller's cart session
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	userID, _ := middleware.GetUserID(c)

	order, err := oc.Service.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, oc.respond(*order))
}

// GetOrders returns all orders, newest first (admin surface)
func (oc *OrderController) GetOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := oc.Service.ListOrders(c.Request.Context(), limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, oc.respondList(orders))
}

// GetMyOrders returns the calling user's orders
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders, err := oc.Service.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, oc.respondList(orders))
}

// GetOrderByID returns a single order
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := oc.Service.GetOrder(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, oc.respond(*order))
}

// UpdateStatus applies an admin-driven fulfillment transition
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	order, err := oc.Service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, oc.respond(*order))
}

func (oc *OrderController) respondList(orders []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, oc.respond(order))
	}
	return out
}
