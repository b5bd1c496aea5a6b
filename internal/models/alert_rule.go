package models

import (
	"gorm.io/datatypes"
)

// AlertRule is authored externally; the generator only reads active rows.
type AlertRule struct {
	BaseModel

	AlertType  string         `gorm:"not null"` // "low_stock", "expiring_soon", ...
	Severity   string         `gorm:"not null"`
	Conditions datatypes.JSON `gorm:"type:jsonb"` // threshold, days_before_expiry, product_ids, category_ids
	IsActive   bool           `gorm:"default:true"`
}
