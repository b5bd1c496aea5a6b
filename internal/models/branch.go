package models

type Branch struct {
	BaseModel

	Name     string `gorm:"not null"`
	Address  string
	IsActive bool `gorm:"default:true"`

	// Per-branch escalation hooks for critical alerts
	DiscordWebhook string
	SlackWebhook   string

	// Relationships
	Inventories   []Inventory    `gorm:"foreignKey:BranchID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:BranchID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
