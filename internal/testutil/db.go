package testutil

import (
	"testing"

	appdb "github.com/Pinoccchio/InCloud-WEB-sub003/db"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates an in-memory SQLite database with all tables and the
// dedup indexes applied. The connection is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})

	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	err = gdb.AutoMigrate(
		&models.Branch{},
		&models.Product{},
		&models.Inventory{},
		&models.ProductBatch{},
		&models.AlertRule{},
		&models.Admin{},
		&models.Notification{},
	)

	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	if err := appdb.CreateDedupIndexes(gdb); err != nil {
		t.Fatalf("creating dedup indexes: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}
