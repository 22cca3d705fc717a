package db

import (
	"cryptofolio/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.PortfolioMeta{},
		&models.Holding{},
		&models.Transaction{},
		&models.SnapshotRecord{},
	)
}
