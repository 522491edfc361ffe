package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilkr01/drcuberstore/internal/model"
	"github.com/sahilkr01/drcuberstore/pkg/database"
	"github.com/sahilkr01/drcuberstore/pkg/logger"
	"github.com/sahilkr01/drcuberstore/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const backendPostgres = "postgres"

// Gorm is a Store kept in the storage_entries table. Several service instances may share it.
type Gorm struct {
	db    *gorm.DB
	quota int64
	log   *zap.Logger
}

// NewGorm creates a store on db. quota bounds the size of a single entry; zero disables it.
func NewGorm(db *gorm.DB, quota int64, log *zap.Logger) *Gorm {
	return &Gorm{db: db, quota: quota, log: log}
}

// Migrate creates the storage table
func (g *Gorm) Migrate() error {
	return database.MigrateModels(g.db, &model.StorageEntry{})
}

func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

// Get returns the value stored under key
func (g *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	defer prometheus.TrackStorageOperation("get", backendPostgres)(time.Now())

	var entry model.StorageEntry
	err := g.db.WithContext(ctx).Where(keyIs(key)).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, g.fail(ctx, "get", key, err)
	}
	return entry.Value, true, nil
}

// Set upserts value under key
func (g *Gorm) Set(ctx context.Context, key, value string) error {
	defer prometheus.TrackStorageOperation("set", backendPostgres)(time.Now())
	if key == "" {
		return ErrEmptyKey
	}
	if size := entrySize(key, value); g.quota > 0 && size > g.quota {
		prometheus.RecordStorageError("set", "quota_exceeded")
		return fmt.Errorf("set %q (%d of %d bytes): %w", key, size, g.quota, ErrQuotaExceeded)
	}

	entry := model.StorageEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return g.fail(ctx, "set", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (g *Gorm) Remove(ctx context.Context, key string) error {
	defer prometheus.TrackStorageOperation("remove", backendPostgres)(time.Now())

	if err := g.db.WithContext(ctx).Where(keyIs(key)).Delete(&model.StorageEntry{}).Error; err != nil {
		return g.fail(ctx, "remove", key, err)
	}
	return nil
}

func (g *Gorm) fail(ctx context.Context, op, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %q: %w", op, key, err)
	}
	prometheus.RecordStorageError(op, "unavailable")
	logger.Scoped(ctx, g.log).Error("Storage operation failed",
		zap.String("operation", op),
		zap.String("key", key),
		zap.Error(err))
	return fmt.Errorf("%s %q: %w: %v", op, key, ErrUnavailable, err)
}
