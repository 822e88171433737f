package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GORMKVRepository is a GORM implementation of KVRepository.
type GORMKVRepository struct {
	db *gorm.DB
}

// NewGORMKVRepository creates a new instance of GORMKVRepository.
func NewGORMKVRepository(db *gorm.DB) *GORMKVRepository {
	return &GORMKVRepository{
		db: db,
	}
}

// OpenDB opens the storage database: postgres when dsn is set, otherwise a sqlite file at path.
func OpenDB(dsn, path string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	var dialector gorm.Dialector
	if dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(path)
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// Get retrieves a single value.
func (r *GORMKVRepository) Get(namespace, key string) (string, error) {
	var entry models.KVEntry
	if err := r.db.Where("namespace = ? AND kv_key = ?", namespace, key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("key %s/%s %w", namespace, key, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get key %s/%s: %w", namespace, key, err)
	}
	return entry.Value, nil
}

// Set inserts or overwrites a value.
func (r *GORMKVRepository) Set(namespace, key, value string) error {
	entry := models.KVEntry{Namespace: namespace, Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (r *GORMKVRepository) Delete(namespace, key string) error {
	if err := r.db.Where("namespace = ? AND kv_key = ?", namespace, key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete key %s/%s: %w", namespace, key, err)
	}
	return nil
}

// List returns every key/value of a namespace.
func (r *GORMKVRepository) List(namespace string) (map[string]string, error) {
	var entries []models.KVEntry
	if err := r.db.Where("namespace = ?", namespace).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list namespace %s: %w", namespace, err)
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// DeleteNamespace removes every key of a namespace.
func (r *GORMKVRepository) DeleteNamespace(namespace string) error {
	if err := r.db.Where("namespace = ?", namespace).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear namespace %s: %w", namespace, err)
	}
	return nil
}
