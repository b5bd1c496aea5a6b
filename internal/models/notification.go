package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is the durable record of an operational condition requiring
// admin attention. Alert rows produced by the rule engine are a subset
// (AutoGenerated = true). The dedup invariant lives in the partial unique
// indexes created in db.MigrateDatabase: at most one active row per
// (type, inventory_id) and per (type, batch_id).
type Notification struct {
	BaseModel

	Type     string `json:"type" gorm:"not null;index"`
	Severity string `json:"severity" gorm:"not null"`
	Title    string `json:"title" gorm:"not null"`
	Message  string `json:"message"`

	BranchID    string  `json:"branch_id" gorm:"type:uuid;not null;index"`
	ProductID   *string `json:"product_id" gorm:"type:uuid"`
	InventoryID *string `json:"inventory_id" gorm:"type:uuid"`
	BatchID     *string `json:"batch_id" gorm:"type:uuid"`

	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	Status         string     `json:"status" gorm:"not null;default:active;index"`
	IsRead         bool       `json:"is_read" gorm:"not null;default:false"`
	AdminIsRead    bool       `json:"admin_is_read" gorm:"not null;default:false"`
	IsAcknowledged bool       `json:"is_acknowledged" gorm:"not null;default:false"`
	IsResolved     bool       `json:"is_resolved" gorm:"not null;default:false"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	AcknowledgedBy *string    `json:"acknowledged_by" gorm:"type:uuid"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	ResolvedBy     *string    `json:"resolved_by" gorm:"type:uuid"`
	AutoGenerated  bool       `json:"auto_generated" gorm:"not null;default:false"`

	// Relationships
	Branch Branch `gorm:"foreignKey:BranchID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
