package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/services"
)

type InventoryController struct {
	Service services.InventoryService
}

func NewInventoryController(service services.InventoryService) *InventoryController {
	return &InventoryController{Service: service}
}

// GetStock returns the ledger counter for a product
func (ic *InventoryController) GetStock(c *gin.Context) {
	productID := c.Param("product_id")

	level, err := ic.Service.GetStock(c.Request.Context(), productID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, level)
}

// SetStock writes the absolute counter for a product (admin surface)
func (ic *InventoryController) SetStock(c *gin.Context) {
	productID := c.Param("product_id")

	var req struct {
		Available *int `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	level, err := ic.Service.SetStock(c.Request.Context(), productID, *req.Available)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, level)
}
