//go:build !js && !wasm
// +build !js,!wasm

// Package sqlstore keeps fingerprint records as rows of a SQLite table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/revsearch/pkg/revsearch/corpus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "revsearch.sqlite3"
const errStoreNil = "sqlite store is nil"

type Store struct {
	DB   *gorm.DB
	db   *sql.DB
	path string
}

// Record is one stored fingerprint. Data holds the record exactly as it
// would appear on disk, including any compression implied by Name.
type Record struct {
	Name      string `gorm:"primaryKey;type:varchar(255)" json:"name"`
	Data      []byte `json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "fingerprint_records" }

// Open opens (creating if needed) the SQLite database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Record{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &Store{DB: db, db: sqlDB, path: dbPath}, nil
}

func (s *Store) String() string { return "sqlite:" + s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List returns record names in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}
	var names []string
	err := s.DB.WithContext(ctx).
		Model(&Record{}).
		Order("created_at, name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return names, nil
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New(errStoreNil)
	}
	var rec Record
	err := s.DB.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("record %s: %w", name, corpus.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying record %s: %w", name, err)
	}
	return rec.Data, nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if s == nil || s.DB == nil {
		return errors.New(errStoreNil)
	}
	rec := Record{Name: name, Data: data}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("storing record %s: %w", name, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if s == nil || s.DB == nil {
		return errors.New(errStoreNil)
	}
	if err := s.DB.WithContext(ctx).Where("name = ?", name).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New(errStoreNil)
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&Record{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

var (
	_ corpus.Store   = (*Store)(nil)
	_ corpus.Writer  = (*Store)(nil)
	_ corpus.Counter = (*Store)(nil)
)
