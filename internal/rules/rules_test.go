package rules

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/snapshot"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/types"
	"gorm.io/datatypes"
)

type fakeReader struct {
	inventory []snapshot.InventoryRow
	batches   []snapshot.BatchRow
	err       error
}

func (f *fakeReader) LowStock(ctx context.Context, branchID string) ([]snapshot.InventoryRow, error) {
	return f.inventory, f.err
}

func (f *fakeReader) ExpiringBatches(ctx context.Context, branchID string, within time.Duration) ([]snapshot.BatchRow, error) {
	return f.batches, f.err
}

func TestLowStockClassification(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		quantity     int
		threshold    int
		wantType     string
		wantSeverity string
	}{
		{"at threshold is inclusive", 10, 10, types.AlertLowStock, types.SeverityHigh},
		{"below threshold", 3, 10, types.AlertLowStock, types.SeverityHigh},
		{"zero is out of stock, not low stock", 0, 10, types.AlertOutOfStock, types.SeverityCritical},
		{"unset threshold uses default", 7, 0, types.AlertLowStock, types.SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{inventory: []snapshot.InventoryRow{{
				InventoryID:       "inv-1",
				ProductID:         "prod-1",
				ProductName:       "Paracetamol 500mg",
				AvailableQuantity: tt.quantity,
				LowStockThreshold: tt.threshold,
			}}}

			rule := LowStockRule{DefaultThreshold: snapshot.DefaultLowStockThreshold}

			alerts, err := rule.Evaluate(context.Background(), reader, "branch-1", now)

			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			if len(alerts) != 1 {
				t.Fatalf("expected 1 alert, got %d", len(alerts))
			}

			alert := alerts[0]

			if alert.Type != tt.wantType {
				t.Errorf("type = %s, want %s", alert.Type, tt.wantType)
			}

			if alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}

			if alert.InventoryID != "inv-1" || alert.BatchID != "" {
				t.Errorf("expected inventory-keyed alert, got inventory=%q batch=%q", alert.InventoryID, alert.BatchID)
			}
		})
	}
}

func TestLowStockMessageEmbedsProductAndQuantities(t *testing.T) {
	reader := &fakeReader{inventory: []snapshot.InventoryRow{{
		InventoryID:       "inv-1",
		ProductID:         "prod-1",
		ProductName:       "Amoxicillin 250mg",
		AvailableQuantity: 4,
		LowStockThreshold: 15,
	}}}

	rule := LowStockRule{DefaultThreshold: snapshot.DefaultLowStockThreshold}

	alerts, err := rule.Evaluate(context.Background(), reader, "branch-1", time.Now())

	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	message := alerts[0].Message

	for _, want := range []string{"Amoxicillin 250mg", "4", "15"} {
		if !strings.Contains(message, want) {
			t.Errorf("message %q missing %q", message, want)
		}
	}
}

func TestOutOfStockMessageEmbedsProductAndQuantities(t *testing.T) {
	reader := &fakeReader{inventory: []snapshot.InventoryRow{{
		InventoryID:       "inv-1",
		ProductID:         "prod-1",
		ProductName:       "Amoxicillin 250mg",
		AvailableQuantity: 0,
		LowStockThreshold: 15,
	}}}

	rule := LowStockRule{DefaultThreshold: snapshot.DefaultLowStockThreshold}

	alerts, err := rule.Evaluate(context.Background(), reader, "branch-1", time.Now())

	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	message := alerts[0].Message

	for _, want := range []string{"Amoxicillin 250mg", "0 remaining", "15"} {
		if !strings.Contains(message, want) {
			t.Errorf("message %q missing %q", message, want)
		}
	}
}

func TestExpirationClassification(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		expiration   time.Time
		wantType     string
		wantSeverity string
	}{
		{"expires in exactly 3 days", now.Add(3 * 24 * time.Hour), types.AlertExpiringSoon, types.SeverityHigh},
		{"expires in exactly 4 days", now.Add(4 * 24 * time.Hour), types.AlertExpiringSoon, types.SeverityMedium},
		{"expires tomorrow", now.Add(24 * time.Hour), types.AlertExpiringSoon, types.SeverityHigh},
		{"already expired", now.Add(-5 * 24 * time.Hour), types.AlertExpired, types.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{batches: []snapshot.BatchRow{{
				BatchID:        "batch-1",
				BatchNumber:    "B-2026-001",
				InventoryID:    "inv-1",
				ProductID:      "prod-1",
				ProductName:    "Insulin Glargine",
				Quantity:       40,
				ExpirationDate: tt.expiration,
			}}}

			rule := ExpirationRule{WindowDays: DefaultExpiryWindowDays, UrgentDays: DefaultUrgentExpiryDays}

			alerts, err := rule.Evaluate(context.Background(), reader, "branch-1", now)

			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			if len(alerts) != 1 {
				t.Fatalf("expected 1 alert, got %d", len(alerts))
			}

			alert := alerts[0]

			if alert.Type != tt.wantType {
				t.Errorf("type = %s, want %s", alert.Type, tt.wantType)
			}

			if alert.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", alert.Severity, tt.wantSeverity)
			}

			if alert.BatchID != "batch-1" || alert.InventoryID != "" {
				t.Errorf("expected batch-keyed alert, got inventory=%q batch=%q", alert.InventoryID, alert.BatchID)
			}
		})
	}
}

func TestExpiredMessageReportsOverdueDays(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	reader := &fakeReader{batches: []snapshot.BatchRow{{
		BatchID:        "batch-1",
		BatchNumber:    "B-2026-007",
		ProductID:      "prod-1",
		ProductName:    "Cefalexin",
		Quantity:       12,
		ExpirationDate: now.Add(-5 * 24 * time.Hour),
	}}}

	rule := ExpirationRule{WindowDays: DefaultExpiryWindowDays, UrgentDays: DefaultUrgentExpiryDays}

	alerts, err := rule.Evaluate(context.Background(), reader, "branch-1", now)

	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !strings.Contains(alerts[0].Message, "5 day(s) ago") {
		t.Errorf("message %q does not report 5 overdue days", alerts[0].Message)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		offset time.Duration
		want   int
	}{
		{72 * time.Hour, 3},
		{73 * time.Hour, 4},   // partial days round up
		{96 * time.Hour, 4},
		{-120 * time.Hour, -5},
		{-12 * time.Hour, 0},
	}

	for _, tt := range tests {
		if got := DaysUntil(now, now.Add(tt.offset)); got != tt.want {
			t.Errorf("DaysUntil(+%v) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}

func TestEvaluateIsPureOverSnapshotErrors(t *testing.T) {
	reader := &fakeReader{err: fmt.Errorf("connection refused")}

	rule := LowStockRule{DefaultThreshold: snapshot.DefaultLowStockThreshold}

	if _, err := rule.Evaluate(context.Background(), reader, "branch-1", time.Now()); err == nil {
		t.Fatal("expected snapshot fetch error to propagate")
	}
}

func TestFromModel(t *testing.T) {
	rule, ok := FromModel(models.AlertRule{
		AlertType:  types.AlertLowStock,
		Conditions: datatypes.JSON([]byte(`{"threshold": 25, "product_ids": ["prod-9"]}`)),
	})

	if !ok {
		t.Fatal("expected low_stock rule to map")
	}

	lowStock, ok := rule.(LowStockRule)

	if !ok {
		t.Fatalf("expected LowStockRule, got %T", rule)
	}

	if lowStock.DefaultThreshold != 25 {
		t.Errorf("threshold = %d, want 25", lowStock.DefaultThreshold)
	}

	if len(lowStock.ProductIDs) != 1 || lowStock.ProductIDs[0] != "prod-9" {
		t.Errorf("product filter = %v, want [prod-9]", lowStock.ProductIDs)
	}

	if _, ok := FromModel(models.AlertRule{AlertType: types.AlertOverstock}); ok {
		t.Error("overstock has no evaluator variant yet and should not map")
	}
}
