package models

import "time"

// OriginCredential maps an embedding site's origin to its API key.
// An origin holds at most one active key; regeneration replaces it.
type OriginCredential struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Origin    string    `gorm:"uniqueIndex;not null;size:255" json:"origin"` // scheme://host[:port]
	APIKey    string    `gorm:"not null;size:64" json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OriginCredential) TableName() string {
	return "origin_credentials"
}

// GlobalKey is a credential valid from any origin. It bypasses the
// origin whitelist but not per-origin rate limiting.
type GlobalKey struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;not null;size:64" json:"key"`
	Label     string    `gorm:"size:100" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

func (GlobalKey) TableName() string {
	return "global_keys"
}

// Setting is a durable key-value row for gateway-wide flags such as
// the master API switch.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// SettingAPIEnabled is the master switch row key. Missing or unreadable
// defaults to enabled.
const SettingAPIEnabled = "api_enabled"
