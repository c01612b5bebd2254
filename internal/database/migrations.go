package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ban2lab/longanicore-gateway/internal/models"
)

// RunMigrations runs custom data migrations after schema changes.
func RunMigrations(db *gorm.DB) error {
	if err := seedDefaultSettings(db); err != nil {
		return err
	}
	if err := normalizeLegacyOrigins(db); err != nil {
		return err
	}
	return nil
}

// seedDefaultSettings ensures the master switch row exists. Absence is
// treated as enabled at read time too, but an explicit row keeps the
// admin UI honest about the current state.
func seedDefaultSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Setting{}).Where("key = ?", models.SettingAPIEnabled).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		logrus.Info("Seeding default setting: api_enabled=true")
		return db.Create(&models.Setting{Key: models.SettingAPIEnabled, Value: "true"}).Error
	}
	return nil
}

// normalizeLegacyOrigins strips trailing slashes from origins stored by
// early builds, which recorded full page URLs instead of origins.
// Safe to run multiple times: it only touches rows that still carry one.
func normalizeLegacyOrigins(db *gorm.DB) error {
	result := db.Exec(`
		UPDATE origin_credentials
		SET origin = RTRIM(origin, '/')
		WHERE origin LIKE '%/'
	`)
	if result.Error != nil {
		logrus.Warnf("Failed to normalize legacy origins: %v", result.Error)
		return nil
	}
	if result.RowsAffected > 0 {
		logrus.Infof("Normalized %d legacy origin rows", result.RowsAffected)
	}
	return nil
}
