package types

import (
	"os"
	"strings"
)

const ContextAdminKey = "admin"

// Alert types produced by the rule engine.
const (
	AlertLowStock     = "low_stock"
	AlertOutOfStock   = "out_of_stock"
	AlertExpiringSoon = "expiring_soon"
	AlertExpired      = "expired"
	AlertOverstock    = "overstock"
)

// Severity levels, ordered low < medium < high < critical.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Notification lifecycle status.
const (
	StatusActive   = "active"
	StatusResolved = "resolved"
)

// AvailableAlertTypes is the full set reported by the generation status probe.
var AvailableAlertTypes = []string{
	AlertLowStock,
	AlertOutOfStock,
	AlertExpiringSoon,
	AlertExpired,
	AlertOverstock,
}

var severityRank = map[string]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// SeverityAtLeast reports whether severity a ranks at or above b.
func SeverityAtLeast(a, b string) bool {
	return severityRank[a] >= severityRank[b]
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
