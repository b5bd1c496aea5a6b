// Package snapshot provides read-only views of inventory and batch state for
// one branch. Rows are read fresh on every generation run and never written.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultLowStockThreshold applies to inventory rows whose threshold is unset.
const DefaultLowStockThreshold = 10

type InventoryRow struct {
	InventoryID       string
	ProductID         string
	ProductName       string
	AvailableQuantity int
	LowStockThreshold int
}

type BatchRow struct {
	BatchID        string
	BatchNumber    string
	InventoryID    string
	ProductID      string
	ProductName    string
	Quantity       int
	ExpirationDate time.Time
}

type Reader interface {
	// LowStock returns inventory rows at or below their low-stock threshold,
	// including rows that are fully out of stock.
	LowStock(ctx context.Context, branchID string) ([]InventoryRow, error)
	// ExpiringBatches returns active, non-empty batches expiring within the window.
	ExpiringBatches(ctx context.Context, branchID string, within time.Duration) ([]BatchRow, error)
}

type GormReader struct {
	db *gorm.DB
}

func NewGormReader(db *gorm.DB) *GormReader {
	return &GormReader{db: db}
}

func (r *GormReader) LowStock(ctx context.Context, branchID string) ([]InventoryRow, error) {
	var rows []InventoryRow

	err := r.db.WithContext(ctx).
		Table("inventories").
		Select(`inventories.id AS inventory_id,
			inventories.product_id AS product_id,
			products.name AS product_name,
			inventories.available_quantity AS available_quantity,
			inventories.low_stock_threshold AS low_stock_threshold`).
		Joins("JOIN products ON products.id = inventories.product_id").
		Where(`inventories.branch_id = ?
			AND (inventories.available_quantity = 0
				OR inventories.available_quantity <= (CASE
					WHEN inventories.low_stock_threshold > 0 THEN inventories.low_stock_threshold
					ELSE ? END))`, branchID, DefaultLowStockThreshold).
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("fetch low stock snapshot: %w", err)
	}

	return rows, nil
}

func (r *GormReader) ExpiringBatches(ctx context.Context, branchID string, within time.Duration) ([]BatchRow, error) {
	var rows []BatchRow

	err := r.db.WithContext(ctx).
		Table("product_batches").
		Select(`product_batches.id AS batch_id,
			product_batches.batch_number AS batch_number,
			product_batches.inventory_id AS inventory_id,
			inventories.product_id AS product_id,
			products.name AS product_name,
			product_batches.quantity AS quantity,
			product_batches.expiration_date AS expiration_date`).
		Joins("JOIN inventories ON inventories.id = product_batches.inventory_id").
		Joins("JOIN products ON products.id = inventories.product_id").
		Where(`inventories.branch_id = ?
			AND product_batches.status = ?
			AND product_batches.quantity > 0
			AND product_batches.expiration_date <= ?`, branchID, "active", time.Now().Add(within)).
		Order("product_batches.expiration_date ASC").
		Scan(&rows).Error

	if err != nil {
		return nil, fmt.Errorf("fetch expiring batch snapshot: %w", err)
	}

	return rows, nil
}
