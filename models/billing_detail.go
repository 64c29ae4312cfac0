package models

import "time"

// BillingDetail is the computed summary record for one invoice (table
// billing_details): exactly one row per customer. GrandTotal is always
// recomputed server-side as Total + Tax + Packaging at the moment of the
// last write; client-supplied totals are never persisted as-is.
type BillingDetail struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	BillingID   uint    `gorm:"index"` // first line item of the invoice, kept for schema compatibility
	CustomerID  uint    `gorm:"index;not null"`
	GrandTotal  float64 `gorm:"not null"`
	Tax         float64 `gorm:"not null"`
	Packaging   float64 `gorm:"not null"`
	Total       float64 `gorm:"not null"`
	BillingDate time.Time `gorm:"type:date;not null;index"`
}
