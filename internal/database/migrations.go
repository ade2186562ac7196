package database

import (
	"errors"
	"time"

	"github.com/azoai/botadmin/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	migrationLowercaseProductKeywords = "2026-07-12_lowercase_product_keywords"
	migrationNormalizeOrderStatuses   = "2026-08-02_normalize_order_statuses"
)

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationLowercaseProductKeywords, apply: lowercaseProductKeywords},
		{name: migrationNormalizeOrderStatuses, apply: normalizeOrderStatuses},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// lowercaseProductKeywords repairs keywords inserted before the dashboard
// started lowercasing at the boundary; bot command matching is
// case-sensitive on its side.
func lowercaseProductKeywords(db *gorm.DB) error {
	return db.Exec("UPDATE products SET keyword = lower(keyword) WHERE keyword <> lower(keyword);").Error
}

// normalizeOrderStatuses maps the legacy 'done' status written by early bot
// builds onto the current enum.
func normalizeOrderStatuses(db *gorm.DB) error {
	return db.Model(&store.Order{}).
		Where("status = ?", "done").
		Update("status", store.OrderStatusCompleted).Error
}
