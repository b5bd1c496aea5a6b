package models

// Admin accounts are provisioned by the external auth service; this core only
// resolves the identity baked into a session token.
type Admin struct {
	BaseModel

	Name     string `gorm:"not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	BranchID string `gorm:"type:uuid;not null;index"`
	IsActive bool   `gorm:"default:true"`

	// Relationships
	Branch Branch `gorm:"foreignKey:BranchID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
