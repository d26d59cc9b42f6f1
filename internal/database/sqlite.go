// Package database provides the durable blob primitive behind the bot's
// social-state snapshots: a single-row SQLite table accessed through GORM.
package database

import (
	"errors"
	"fmt"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotKey identifies the one logical row the bot persists into.
const snapshotKey = "state"

// botSnapshot is the persisted snapshot record.
type botSnapshot struct {
	Key              string `gorm:"column:key;primaryKey;size:190;not null"`
	Blob             []byte `gorm:"column:blob;type:blob;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (botSnapshot) TableName() string {
	return "bot_snapshots"
}

// OpenSQLite establishes a SQLite connection and performs schema migration.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&botSnapshot{}); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}

// SnapshotStore persists the full-state blob. It implements the store
// package's Persister interface.
type SnapshotStore struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewSnapshotStore wraps a database handle.
func NewSnapshotStore(db *gorm.DB) (*SnapshotStore, error) {
	if db == nil {
		return nil, errors.New("database: connection required")
	}
	return &SnapshotStore{db: db, clock: time.Now}, nil
}

// Save overwrites the persisted snapshot.
func (s *SnapshotStore) Save(blob []byte) error {
	record := botSnapshot{
		Key:              snapshotKey,
		Blob:             blob,
		UpdatedAtSeconds: s.clock().UTC().Unix(),
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error
}

// Load returns the persisted snapshot, or nil when none exists yet.
func (s *SnapshotStore) Load() ([]byte, error) {
	var record botSnapshot
	err := s.db.Where("key = ?", snapshotKey).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.Blob, nil
}
