// Package rules turns inventory and batch snapshots into candidate alerts.
// Each rule kind is a tagged variant; adding a new alert type means adding a
// variant here, not touching the generation service.
package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/snapshot"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
)

const (
	// DefaultExpiryWindowDays is how far ahead the expiration rule looks.
	DefaultExpiryWindowDays = 7
	// DefaultUrgentExpiryDays marks the cutoff between high and medium severity.
	DefaultUrgentExpiryDays = 3
)

// Rule evaluates one alert condition against a branch snapshot. Rules are
// pure with respect to their snapshot inputs: they never persist anything.
type Rule interface {
	Evaluate(ctx context.Context, reader snapshot.Reader, branchID string, now time.Time) ([]GeneratedAlert, error)
}

// LowStockRule produces out_of_stock and low_stock alerts.
type LowStockRule struct {
	DefaultThreshold int
	ProductIDs       []string // optional filter; empty means all products
}

// ExpirationRule produces expired and expiring_soon alerts.
type ExpirationRule struct {
	WindowDays int
	UrgentDays int
	ProductIDs []string
}

// DefaultRules is the built-in rule set used when no active AlertRule rows exist.
func DefaultRules() []Rule {
	return []Rule{
		LowStockRule{DefaultThreshold: snapshot.DefaultLowStockThreshold},
		ExpirationRule{WindowDays: DefaultExpiryWindowDays, UrgentDays: DefaultUrgentExpiryDays},
	}
}

type ruleConditions struct {
	Threshold        int      `json:"threshold"`
	DaysBeforeExpiry int      `json:"days_before_expiry"`
	ProductIDs       []string `json:"product_ids"`
	CategoryIDs      []string `json:"category_ids"`
}

// FromModel maps a stored AlertRule row onto its variant. Unknown or
// unsupported alert types report ok=false and are skipped by the caller.
func FromModel(rule models.AlertRule) (Rule, bool) {
	var cond ruleConditions
	if len(rule.Conditions) > 0 {
		if err := json.Unmarshal(rule.Conditions, &cond); err != nil {
			return nil, false
		}
	}

	switch rule.AlertType {
	case types.AlertLowStock, types.AlertOutOfStock:
		threshold := cond.Threshold
		if threshold <= 0 {
			threshold = snapshot.DefaultLowStockThreshold
		}
		return LowStockRule{DefaultThreshold: threshold, ProductIDs: cond.ProductIDs}, true
	case types.AlertExpiringSoon, types.AlertExpired:
		window := cond.DaysBeforeExpiry
		if window <= 0 {
			window = DefaultExpiryWindowDays
		}
		return ExpirationRule{WindowDays: window, UrgentDays: DefaultUrgentExpiryDays, ProductIDs: cond.ProductIDs}, true
	default:
		return nil, false
	}
}

func (r LowStockRule) Evaluate(ctx context.Context, reader snapshot.Reader, branchID string, now time.Time) ([]GeneratedAlert, error) {
	rows, err := reader.LowStock(ctx, branchID)

	if err != nil {
		return nil, err
	}

	var alerts []GeneratedAlert

	for _, row := range rows {
		if !matchesProduct(r.ProductIDs, row.ProductID) {
			continue
		}

		threshold := row.LowStockThreshold
		if threshold <= 0 {
			threshold = r.DefaultThreshold
		}

		var alert GeneratedAlert

		if row.AvailableQuantity == 0 {
			alert = newAlert(
				types.AlertOutOfStock,
				types.SeverityCritical,
				"Out of Stock Alert",
				fmt.Sprintf("%s is out of stock: 0 remaining (threshold: %d)",
					row.ProductName, threshold),
			)
		} else {
			alert = newAlert(
				types.AlertLowStock,
				types.SeverityHigh,
				"Low Stock Alert",
				fmt.Sprintf("%s is running low: %d remaining (threshold: %d)",
					row.ProductName, row.AvailableQuantity, threshold),
			)
		}

		alert.ProductID = row.ProductID
		alert.InventoryID = row.InventoryID
		alert.Metadata = map[string]interface{}{
			"product_name":        row.ProductName,
			"available_quantity":  row.AvailableQuantity,
			"low_stock_threshold": threshold,
		}

		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func (r ExpirationRule) Evaluate(ctx context.Context, reader snapshot.Reader, branchID string, now time.Time) ([]GeneratedAlert, error) {
	window := time.Duration(r.WindowDays) * 24 * time.Hour

	rows, err := reader.ExpiringBatches(ctx, branchID, window)

	if err != nil {
		return nil, err
	}

	var alerts []GeneratedAlert

	for _, row := range rows {
		if !matchesProduct(r.ProductIDs, row.ProductID) {
			continue
		}

		days := DaysUntil(now, row.ExpirationDate)

		var alert GeneratedAlert

		if row.ExpirationDate.Before(now) {
			overdue := days
			if overdue < 0 {
				overdue = -overdue
			}
			alert = newAlert(
				types.AlertExpired,
				types.SeverityCritical,
				"Expired Batch Alert",
				fmt.Sprintf("Batch %s of %s expired %d day(s) ago (%d units)",
					row.BatchNumber, row.ProductName, overdue, row.Quantity),
			)
		} else {
			severity := types.SeverityMedium
			if days <= r.UrgentDays {
				severity = types.SeverityHigh
			}
			alert = newAlert(
				types.AlertExpiringSoon,
				severity,
				"Expiring Soon Alert",
				fmt.Sprintf("Batch %s of %s expires in %d day(s) (%d units)",
					row.BatchNumber, row.ProductName, days, row.Quantity),
			)
		}

		alert.ProductID = row.ProductID
		alert.BatchID = row.BatchID
		alert.Metadata = map[string]interface{}{
			"product_name":      row.ProductName,
			"batch_number":      row.BatchNumber,
			"quantity":          row.Quantity,
			"days_until_expiry": days,
			"expiration_date":   row.ExpirationDate.Format(time.RFC3339),
		}

		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// DaysUntil is ceil((expiration - now) / 24h); negative once expired.
func DaysUntil(now, expiration time.Time) int {
	return int(math.Ceil(expiration.Sub(now).Hours() / 24))
}

func matchesProduct(filter []string, productID string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, id := range filter {
		if id == productID {
			return true
		}
	}
	return false
}
