package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ban2lab/longanicore-gateway/internal/models"
)

// Initialize opens the sqlite database backing the credential store and
// migrates the schema. The handle is returned rather than stored in a
// package-level variable so tests can run against isolated in-memory
// databases.
func Initialize(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	logrus.Info("Database connected successfully")

	// Auto-migrate the schema
	err = db.AutoMigrate(&models.OriginCredential{}, &models.GlobalKey{}, &models.Setting{})
	if err != nil {
		return nil, err
	}

	logrus.Info("Database migration completed")
	return db, nil
}
