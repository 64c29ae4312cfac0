package models

import "time"

// Billing is a single invoice line item (table billings). Amount is derived
// as qty*rate when building views and is never persisted as authoritative.
type Billing struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CustomerID  uint    `gorm:"index;not null"`
	Description string  `gorm:"size:512;not null"`
	Qty         float64 `gorm:"not null"`
	Rate        float64 `gorm:"not null"`
	Unit        string  `gorm:"size:64"`
}
