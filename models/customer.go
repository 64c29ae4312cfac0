package models

import "time"

// Customer is the party an invoice is billed to. Each invoice creates its
// own customer row, so in practice one customer row belongs to exactly one
// billing_details row even though the schema allows many.
type Customer struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Title        string `gorm:"size:255;not null"`
	CustomerName string `gorm:"size:255;not null;index"`
	Location     string `gorm:"size:512;not null"`
}
