package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ban2lab/longanicore-gateway/internal/models"
)

func TestRunMigrationsSeedsAPIEnabled(t *testing.T) {
	db, err := Initialize(":memory:")
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db))

	var setting models.Setting
	require.NoError(t, db.Where("key = ?", models.SettingAPIEnabled).First(&setting).Error)
	assert.Equal(t, "true", setting.Value)

	// Running again must not duplicate or reset the row.
	require.NoError(t, db.Model(&models.Setting{}).
		Where("key = ?", models.SettingAPIEnabled).
		Update("value", "false").Error)
	require.NoError(t, RunMigrations(db))

	require.NoError(t, db.Where("key = ?", models.SettingAPIEnabled).First(&setting).Error)
	assert.Equal(t, "false", setting.Value, "existing setting must survive re-migration")

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Where("key = ?", models.SettingAPIEnabled).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunMigrationsNormalizesLegacyOrigins(t *testing.T) {
	db, err := Initialize(":memory:")
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.OriginCredential{Origin: "https://legacy.test/", APIKey: "lc_old"}).Error)
	require.NoError(t, db.Create(&models.OriginCredential{Origin: "https://clean.test", APIKey: "lc_new"}).Error)

	require.NoError(t, RunMigrations(db))

	var cred models.OriginCredential
	require.NoError(t, db.Where("api_key = ?", "lc_old").First(&cred).Error)
	assert.Equal(t, "https://legacy.test", cred.Origin)

	var cleanCred models.OriginCredential
	require.NoError(t, db.Where("api_key = ?", "lc_new").First(&cleanCred).Error)
	assert.Equal(t, "https://clean.test", cleanCred.Origin)
}
