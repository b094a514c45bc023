package contact

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/ashureev/portfolio-assistant/internal/config"
	"github.com/ashureev/portfolio-assistant/internal/shared"
)

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 100

// Repository stores contact submissions.
type Repository interface {
	Create(ctx context.Context, c *Contact) error
	List(ctx context.Context, limit int) ([]Contact, error)
}

// GormRepository implements Repository on top of gorm.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository wraps an open database handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Open connects to Postgres when cfg.DatabaseURL is set and to the local
// SQLite file otherwise.
func Open(cfg config.ContactConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if cfg.DatabaseURL != "" {
		slog.Info("Using Postgres for contacts")
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil
	}

	return OpenSQLite(cfg.DBPath, gormCfg)
}

// OpenSQLite opens the contacts database file at path.
func OpenSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	slog.Info("Using SQLite for contacts", "path", path)
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Create inserts c and fills in its ID.
func (r *GormRepository) Create(ctx context.Context, c *Contact) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
	if err != nil {
		return shared.Dependency("save contact", "failed to save message", err)
	}
	return nil
}

// List returns up to limit submissions, newest first.
func (r *GormRepository) List(ctx context.Context, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var contacts []Contact
	if err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&contacts).Error; err != nil {
		return nil, shared.Dependency("list contacts", "failed to load contacts", err)
	}
	return contacts, nil
}

// Ping checks the database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
