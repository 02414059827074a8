package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/services"
)

type CartController struct {
	Service services.CartService
}

func NewCartController(service services.CartService) *CartController {
	return &CartController{Service: service}
}

type cartMutationRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddItem adds quantity of a product to the session's cart
func (cc *CartController) AddItem(c *gin.Context) {
	var req cartMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := cc.Service.Add(c.Request.Context(), req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// UpdateItem sets the quantity of a line; zero removes it
func (cc *CartController) UpdateItem(c *gin.Context) {
	var req cartMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := cc.Service.SetQuantity(c.Request.Context(), req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveItem removes a line; removing an absent line is a no-op
func (cc *CartController) RemoveItem(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	cart, err := cc.Service.Remove(c.Request.Context(), req.SessionID, req.ProductID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetCart returns the session's cart; unseen sessions read as empty
func (cc *CartController) GetCart(c *gin.Context) {
	sessionID := c.Param("session_id")

	cart, err := cc.Service.Snapshot(c.Request.Context(), sessionID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}
