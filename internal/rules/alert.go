package rules

import "github.com/google/uuid"

// GeneratedAlert is a candidate alert. It stays in memory until the dedup
// gate commits it as a Notification row. Exactly one of InventoryID/BatchID
// is set, depending on Type.
type GeneratedAlert struct {
	ID          string
	Type        string
	Severity    string
	Title       string
	Message     string
	ProductID   string
	InventoryID string
	BatchID     string
	Metadata    map[string]interface{}
}

func newAlert(alertType, severity, title, message string) GeneratedAlert {
	return GeneratedAlert{
		ID:       uuid.NewString(),
		Type:     alertType,
		Severity: severity,
		Title:    title,
		Message:  message,
	}
}
