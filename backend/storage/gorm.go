package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coursetrack/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores entries in the storage_entries table through gorm. Update inserts a
// placeholder row before reading so first writes to a key are serialized too; row
// locks are only taken where the dialect supports them.
type SQL struct {
	DB *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{DB: db}
}

// Migrate creates or updates the storage_entries table.
func (s *SQL) Migrate() error {
	return s.DB.AutoMigrate(&models.StorageEntry{})
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.StorageEntry
	err := s.DB.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return entry.Value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if err := upsert(s.DB.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, key string) error {
	err := s.DB.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.StorageEntry{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (s *SQL) Update(ctx context.Context, key string, fn UpdateFunc) error {
	var fnErr error
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		// Claim the row first so the lock below has something to hold on a first write.
		// A concurrent claimer waits on the unique key until this transaction ends.
		placeholder := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "storage_key"}},
			DoNothing: true,
		}).Create(&models.StorageEntry{Key: key, UpdatedAt: time.Now()})
		if placeholder.Error != nil {
			return placeholder.Error
		}
		ok := placeholder.RowsAffected == 0

		var entry models.StorageEntry
		if err := q.Where("storage_key = ?", key).First(&entry).Error; err != nil {
			return err
		}

		next, err := fn(entry.Value, ok)
		if err != nil {
			fnErr = err
			return err
		}
		return upsert(tx, key, next)
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func upsert(db *gorm.DB, key, value string) error {
	entry := models.StorageEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
