package models

import "time"

// StockLevel is the per-product stock ledger entry. Available is only
// mutated through the inventory service's conditional decrement, never
// written directly from request handlers.
type StockLevel struct {
	ProductID string    `gorm:"primaryKey" json:"product_id"`
	Available int       `gorm:"not null" json:"available"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockLine is one product/quantity pair in a reservation or release.
type StockLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
