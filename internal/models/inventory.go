package models

type Inventory struct {
	BaseModel

	BranchID          string `gorm:"type:uuid;not null;index"`
	ProductID         string `gorm:"type:uuid;not null;index"`
	AvailableQuantity int    `gorm:"not null;default:0"`
	LowStockThreshold int    `gorm:"not null;default:0"` // 0 means "use default"

	// Relationships
	Branch  Branch         `gorm:"foreignKey:BranchID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Product Product        `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Batches []ProductBatch `gorm:"foreignKey:InventoryID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
