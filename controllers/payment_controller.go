package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/partspoint/autoparts-backend/common/errors"
	"github.com/partspoint/autoparts-backend/services"
)

type PaymentController struct {
	Service services.PaymentService
	Logger  *zap.Logger
}

func NewPaymentController(service services.PaymentService, logger *zap.Logger) *PaymentController {
	return &PaymentController{Service: service, Logger: logger}
}

// InitiatePush asks the gateway to prompt the payer's phone for the
// order total
func (pc *PaymentController) InitiatePush(c *gin.Context) {
	var req struct {
		OrderID     string `json:"order_id" binding:"required"`
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	request, err := pc.Service.InitiatePush(c.Request.Context(), orderID, req.PhoneNumber)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":             "push initiated, confirm on your phone",
		"checkout_request_id": request.CheckoutRequestID,
	})
}

// Status lets a checkout page poll for the asynchronous confirmation
func (pc *PaymentController) Status(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	view, err := pc.Service.Status(c.Request.Context(), orderID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Callback ingests the gateway's asynchronous STK result. The gateway
// only needs an acknowledgement; internal order state is never exposed
// to it. Unknown references are acknowledged but not applied.
func (pc *PaymentController) Callback(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Rejected"})
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))

	var payload services.STKCallbackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		pc.Logger.Warn("malformed payment callback", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Rejected"})
		return
	}

	if err := pc.Service.HandleCallback(c.Request.Context(), &payload, raw); err != nil {
		if errors.Is(err, apperrors.ErrUnknownTransaction) {
			c.JSON(http.StatusOK, gin.H{"ResultCode": 1, "ResultDesc": "Rejected"})
			return
		}
		pc.Logger.Error("payment callback processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ResultCode": 1, "ResultDesc": "Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}
