// Package store persists packages, extras, proposals, brochures, assets
// and text snippets with gorm. Records that carry a schema_json column
// expose it decoded as a schema.Document.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lvillar/proposalpdf"
)

// Store is the record store. It is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Open connects using dsn. postgres:// and postgresql:// URLs and
// key=value strings containing "host=" use PostgreSQL; anything else is a
// SQLite file path or ":memory:".
func Open(dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates all tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&Attachment{},
		&Asset{},
		&Package{},
		&Extra{},
		&Proposal{},
		&ProposalItem{},
		&Brochure{},
		&BrochureItem{},
		&Snippet{},
	)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// mapErr converts gorm errors to the package sentinels.
func mapErr(what string, id int64, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("store: %s %d: %w", what, id, proposalpdf.ErrNotFound)
	}
	return fmt.Errorf("store: %s %d: %w", what, id, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("store: %w: %s", proposalpdf.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func get[T any](ctx context.Context, db *gorm.DB, what string, id int64) (*T, error) {
	if id <= 0 {
		return nil, invalid("%s id %d", what, id)
	}
	var rec T
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, mapErr(what, id, err)
	}
	return &rec, nil
}

func remove[T any](ctx context.Context, db *gorm.DB, what string, id int64) error {
	if id <= 0 {
		return invalid("%s id %d", what, id)
	}
	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return mapErr(what, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr(what, id, gorm.ErrRecordNotFound)
	}
	return nil
}

func setStatus[T any](ctx context.Context, db *gorm.DB, what string, id int64, status string) error {
	res := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return mapErr(what, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return mapErr(what, id, gorm.ErrRecordNotFound)
	}
	return nil
}
