// Package settings stores small key-value configuration records, notably
// the bcrypt-hashed dashboard API key that gates the metrics API.
package settings

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Setting is a single key-value configuration record.
type Setting struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Key       string `gorm:"uniqueIndex;not null"`
	Value     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

const dashboardAPIKeyHashKey = "dashboard_api_key_hash"

// Get returns the value for a settings key, or empty string when unset.
func Get(db *gorm.DB, key string) (string, error) {
	var setting Setting
	err := db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// Set upserts a settings key.
func Set(db *gorm.DB, key, value string) error {
	now := time.Now().UTC()
	err := db.Exec(`
		INSERT INTO settings (key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = ?, updated_at = ?
	`, key, value, now, now, value, now).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// GetDashboardAPIKeyHash returns the stored bcrypt hash of the dashboard
// API key, or empty string when no key has been generated yet.
func GetDashboardAPIKeyHash(db *gorm.DB) (string, error) {
	return Get(db, dashboardAPIKeyHashKey)
}

// EnsureDashboardAPIKey generates a dashboard API key on first boot and
// stores its bcrypt hash. The plaintext key is returned exactly once, when
// freshly generated; subsequent calls return an empty string.
func EnsureDashboardAPIKey(db *gorm.DB) (string, error) {
	existing, err := GetDashboardAPIKeyHash(db)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return "", nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	key := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}

	if err := Set(db, dashboardAPIKeyHashKey, string(hash)); err != nil {
		return "", err
	}
	return key, nil
}

// VerifyDashboardAPIKey checks a presented key against the stored hash.
func VerifyDashboardAPIKey(db *gorm.DB, presented string) (bool, error) {
	hash, err := GetDashboardAPIKeyHash(db)
	if err != nil {
		return false, err
	}
	if hash == "" {
		return false, nil
	}
	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
