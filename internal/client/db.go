package client

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"plaque-payments/internal/model"
)

// InitSqliteClient opens the local ledger database and migrates the
// plaque mirror table.
func InitSqliteClient(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	if err := db.AutoMigrate(&model.Plaque{}); err != nil {
		return nil, fmt.Errorf("migrate ledger schema: %w", err)
	}
	return db, nil
}
