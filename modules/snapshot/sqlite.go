package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is one stored value.
type kvEntry struct {
	Key       string `gorm:"primaryKey;column:entry_key;type:text"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for kvEntry.
func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStorage implements Storage on a GORM database.
type SQLiteStorage struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite file at path and migrates the
// key-value table. GORM logging is silent unless debug is set.
func OpenSQLite(path string, debug bool) (*SQLiteStorage, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewSQLiteStorage(db)
}

// NewSQLiteStorage wraps an open GORM database and runs the migration.
func NewSQLiteStorage(db *gorm.DB) (*SQLiteStorage, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// GetWithContext returns the value for key, or nil when absent.
func (s *SQLiteStorage) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	var entry kvEntry
	if err := s.db.WithContext(ctx).First(&entry, "entry_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, nil
}

// SetWithContext upserts the value for key. Expiry is not supported and exp is ignored.
func (s *SQLiteStorage) SetWithContext(ctx context.Context, key string, val []byte, _ time.Duration) error {
	entry := kvEntry{Key: key, Value: val, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// DeleteWithContext removes key. Deleting an absent key is not an error.
func (s *SQLiteStorage) DeleteWithContext(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&kvEntry{}, "entry_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the underlying connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
