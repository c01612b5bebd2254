// Package store implements the durable credential store: origin-scoped
// API keys, global API keys, and the master API switch.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ban2lab/longanicore-gateway/internal/models"
)

// ErrNotFound is returned when no credential exists for a lookup.
// It is distinct from a storage read failure: callers must treat a
// read failure as a reportable internal error, not as "no match".
var ErrNotFound = errors.New("credential not found")

// CredentialStore reads and mutates durable gateway credentials.
// Reads happen on every inbound message; writes only via the admin API.
type CredentialStore struct {
	db *gorm.DB
}

// New creates a credential store backed by the given database.
func New(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// OriginKey returns the API key registered for an origin, or ErrNotFound.
func (s *CredentialStore) OriginKey(origin string) (string, error) {
	var cred models.OriginCredential
	err := s.db.Where("origin = ?", origin).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read origin credential: %w", err)
	}
	return cred.APIKey, nil
}

// HasGlobalKey reports whether key is a registered global API key.
func (s *CredentialStore) HasGlobalKey(key string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.GlobalKey{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("read global keys: %w", err)
	}
	return count > 0, nil
}

// APIEnabled reports the master switch state. A storage read failure
// degrades to enabled (fail-open) so a broken settings table cannot
// silently take the gateway offline; the failure is still logged.
func (s *CredentialStore) APIEnabled() bool {
	var setting models.Setting
	err := s.db.Where("key = ?", models.SettingAPIEnabled).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	if err != nil {
		logrus.Errorf("Could not read master API switch, defaulting to enabled: %v", err)
		return true
	}
	return setting.Value != "false"
}

// SetAPIEnabled flips the master switch.
func (s *CredentialStore) SetAPIEnabled(enabled bool) error {
	value := "true"
	if !enabled {
		value = "false"
	}
	setting := models.Setting{Key: models.SettingAPIEnabled, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// GenerateOriginKey mints a fresh key for an origin, replacing any
// existing one. An origin holds at most one active key at a time.
func (s *CredentialStore) GenerateOriginKey(origin string) (string, error) {
	origin = NormalizeOrigin(origin)
	if origin == "" {
		return "", errors.New("origin must not be empty")
	}

	key := newKey()
	cred := models.OriginCredential{Origin: origin, APIKey: key}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "origin"}},
		DoUpdates: clause.AssignmentColumns([]string{"api_key", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return "", fmt.Errorf("store origin credential: %w", err)
	}
	return key, nil
}

// RemoveOrigin deletes an origin's credential. Removing an unknown
// origin is not an error.
func (s *CredentialStore) RemoveOrigin(origin string) error {
	return s.db.Where("origin = ?", NormalizeOrigin(origin)).Delete(&models.OriginCredential{}).Error
}

// ListOrigins returns all registered origin credentials.
func (s *CredentialStore) ListOrigins() ([]models.OriginCredential, error) {
	var creds []models.OriginCredential
	if err := s.db.Order("origin").Find(&creds).Error; err != nil {
		return nil, fmt.Errorf("list origin credentials: %w", err)
	}
	return creds, nil
}

// AddGlobalKey mints and stores a new global key with an optional label.
func (s *CredentialStore) AddGlobalKey(label string) (string, error) {
	key := newKey()
	if err := s.db.Create(&models.GlobalKey{Key: key, Label: label}).Error; err != nil {
		return "", fmt.Errorf("store global key: %w", err)
	}
	return key, nil
}

// RemoveGlobalKey deletes a global key.
func (s *CredentialStore) RemoveGlobalKey(key string) error {
	return s.db.Where("key = ?", key).Delete(&models.GlobalKey{}).Error
}

// ListGlobalKeys returns all global keys.
func (s *CredentialStore) ListGlobalKeys() ([]models.GlobalKey, error) {
	var keys []models.GlobalKey
	if err := s.db.Order("created_at").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("list global keys: %w", err)
	}
	return keys, nil
}

// NormalizeOrigin trims whitespace and trailing slashes so stored
// origins match the scheme://host[:port] form browsers report.
func NormalizeOrigin(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}

// newKey returns an opaque unguessable credential.
func newKey() string {
	return "lc_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
