package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentOutcome string

const (
	PaymentOutcomePending PaymentOutcome = "pending"
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailed  PaymentOutcome = "failed"
)

// PaymentRequest records one push-payment attempt for an order. Retried
// attempts create new rows; prior failed attempts stay as audit trail.
type PaymentRequest struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	CheckoutRequestID string         `gorm:"uniqueIndex;not null" json:"checkout_request_id"`
	MerchantRequestID string         `json:"merchant_request_id,omitempty"`
	Amount            float64        `gorm:"not null" json:"amount"`
	PhoneNumber       string         `gorm:"not null" json:"phone_number"`
	Outcome           PaymentOutcome `gorm:"type:varchar(10);not null;default:'pending'" json:"outcome"`
	ResultCode        *int           `json:"result_code,omitempty"`
	ResultDesc        string         `json:"result_desc,omitempty"`
	RawPayload        string         `gorm:"type:jsonb" json:"-"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
