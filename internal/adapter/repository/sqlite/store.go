package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/simaogato/goalfolio-backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one stored key
type Entry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName keeps the table name shared with the PostgreSQL store
func (Entry) TableName() string {
	return "kv_entries"
}

// Store implements domain.KeyValueStore on a SQLite database through GORM
type Store struct {
	db *gorm.DB
}

var _ domain.ClosableStore = (*Store)(nil)

// Open creates a SQLite database connection and migrates the kv_entries table.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers
	sqlDB.SetMaxOpenConns(1)
	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate kv_entries: %w", err)
	}
	return &Store{db: db}, nil
}

// Get reads the value stored under key
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if entry.Value == nil {
		entry.Value = []byte{}
	}
	return entry.Value, nil
}

// Set inserts or replaces the value stored under key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
