package models

import "time"

// OrderCreatedEvent is published after an order and its stock commit
// both succeed. Best-effort; consumers are downstream collaborators
// (notifications, analytics).
type OrderCreatedEvent struct {
	Event       string      `json:"event"` // "order.created"
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id,omitempty"`
	SessionID   string      `json:"session_id"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	Timestamp   time.Time   `json:"timestamp"`
}

// PaymentEvent is published when a gateway callback resolves a payment.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment.succeeded" or "payment.failed"
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
