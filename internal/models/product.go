package models

type Product struct {
	BaseModel

	Name       string `gorm:"not null"`
	SKU        string `gorm:"uniqueIndex;not null"`
	CategoryID *string
	IsActive   bool `gorm:"default:true"`

	// Relationships
	Inventories []Inventory `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
