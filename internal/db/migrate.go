package db

import (
	"github.com/ikkim/salonflow-backend/internal/app/model"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Shop{},
		&model.Menu{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB migrates db and normalizes legacy rows.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	// Menus imported before sort_order existed carry NULL.
	result := db.Model(&model.Menu{}).Where("sort_order IS NULL").Update("sort_order", 0)
	if result.Error != nil {
		logger.Error("Failed to normalize menu sort order", result.Error)
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.Info("Normalized legacy menu sort order", logger.Fields{
			"rows": result.RowsAffected,
		})
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}
