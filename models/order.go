package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusAwaiting PaymentStatus = "awaiting_confirmation"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "payment_failed"
)

var validOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// IsValidOrderStatus reports whether s names a known fulfillment status.
func IsValidOrderStatus(s OrderStatus) bool {
	return validOrderStatuses[s]
}

// IsTerminal reports whether no further fulfillment transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the fulfillment state machine permits
// moving from s to target. Transitions are admin-driven; the only hard
// rules are that terminal states are final and that goods already
// dispatched cannot be cancelled.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !IsValidOrderStatus(target) {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return s != OrderStatusShipped && s != OrderStatusDelivered
	}
	return true
}

// CanTransitionTo reports whether the payment state machine permits moving
// to target. paid is terminal; a failed payment may be retried.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if p == PaymentStatusPaid {
		return false
	}
	switch target {
	case PaymentStatusAwaiting:
		return p == PaymentStatusUnpaid || p == PaymentStatusFailed
	case PaymentStatusPaid, PaymentStatusFailed:
		return p == PaymentStatusUnpaid || p == PaymentStatusAwaiting
	case PaymentStatusUnpaid:
		return p == PaymentStatusAwaiting
	}
	return false
}

type Order struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string        `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          string        `gorm:"index" json:"user_id,omitempty"`
	CustomerName    string        `gorm:"not null" json:"customer_name"`
	CustomerEmail   string        `gorm:"not null" json:"customer_email"`
	CustomerPhone   string        `gorm:"not null" json:"customer_phone"`
	CustomerAddress string        `gorm:"not null" json:"customer_address"`
	TotalAmount     float64       `gorm:"not null" json:"total_amount"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(30);not null;default:'unpaid'" json:"payment_status"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   string    `gorm:"not null" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Subtotal    float64   `gorm:"not null" json:"subtotal"`
}
