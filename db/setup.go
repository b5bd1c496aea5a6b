package db

import (
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	tables := []interface{}{
		&models.Branch{},
		&models.Product{},
		&models.Inventory{},
		&models.ProductBatch{},
		&models.AlertRule{},
		&models.Admin{},
		&models.Notification{},
	}

	migrator := DB.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := DB.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return CreateDedupIndexes(DB)
}

// CreateDedupIndexes enforces the at-most-one-active-alert invariant: a second
// auto-generated alert for the same inventory row or batch conflicts instead
// of inserting, so concurrent generation runs cannot produce duplicates.
func CreateDedupIndexes(gdb *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_active_inventory
			ON notifications (type, inventory_id)
			WHERE status = 'active' AND inventory_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_active_batch
			ON notifications (type, batch_id)
			WHERE status = 'active' AND batch_id IS NOT NULL`,
	}

	for _, stmt := range stmts {
		if err := gdb.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
