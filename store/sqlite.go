package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/etnz/onyx"
)

// slotRecord is one slot in the SQLite table.
type slotRecord struct {
	Name      string `gorm:"primaryKey;size:64"`
	Data      []byte
	UpdatedAt time.Time
}

func (slotRecord) TableName() string { return "onyx_slots" }

// SQLite stores slots as rows of a single table.
type SQLite struct {
	db *gorm.DB
}

var _ Backend = (*SQLite)(nil)

// NewSQLite opens or creates the database at path.
func NewSQLite(path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite store: empty database path")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: cannot open %q: %w", path, err)
	}
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("sqlite store: cannot migrate %q: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

// Load reads a slot row.
func (s *SQLite) Load(ctx context.Context, slot onyx.Slot) ([]byte, error) {
	var rec slotRecord
	err := s.db.WithContext(ctx).Where("name = ?", string(slot)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, onyx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite store: cannot load %s: %w", slot, err)
	}
	return rec.Data, nil
}

// Save inserts or replaces a slot row.
func (s *SQLite) Save(ctx context.Context, slot onyx.Slot, data []byte) error {
	rec := slotRecord{Name: string(slot), Data: data}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("sqlite store: cannot save %s: %w", slot, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
