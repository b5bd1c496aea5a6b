package models

import "time"

type ProductBatch struct {
	BaseModel

	InventoryID    string    `gorm:"type:uuid;not null;index"`
	BatchNumber    string    `gorm:"not null"`
	Quantity       int       `gorm:"not null;default:0"`
	ExpirationDate time.Time `gorm:"not null;index"`
	Status         string    `gorm:"not null;default:active"` // "active", "depleted", "discarded"

	// Relationships
	Inventory Inventory `gorm:"foreignKey:InventoryID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
