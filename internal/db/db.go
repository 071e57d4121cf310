package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/models"
)

// ErrNotFound is wrapped by every lookup that matched no row
var ErrNotFound = errors.New("not found")

// Store is the persistence gateway. All statements are parameterized by gorm.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database. It does not migrate; call Migrate
// once at startup.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dsn, err := sqliteDSN(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logMode := logger.Silent // Quiet by default
	if cfg.LogQueries {
		logMode = logger.Info
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	if cfg.Driver == "postgres" {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
	} else {
		// sqlite serializes writers; one connection also keeps :memory: alive
		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{db: gdb}, nil
}

// sqliteDSN turns a path (or :memory:) into a DSN with foreign keys enabled,
// creating the parent directory of file databases.
func sqliteDSN(path string) (string, error) {
	const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	if path == "" || path == ":memory:" {
		return "file::memory:?" + pragmas, nil
	}
	if strings.Contains(path, "?") {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return path + "?" + pragmas, nil
}

// Transaction runs fn inside one database transaction. fn must only use the
// Store it is given.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Ping checks the connection with a trivial round trip
func (s *Store) Ping(ctx context.Context) error {
	var ok int
	if err := s.db.WithContext(ctx).Raw("SELECT 1").Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("unexpected ping result %d", ok)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates/updates the schema and seeds default rows. Safe to run on
// every start.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Column{},
		&models.Ticket{},
		&models.Comment{},
		&models.ActivityEvent{},
		&models.HomeSection{},
		&models.Project{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := s.seedColumns(ctx); err != nil {
		return fmt.Errorf("failed to seed columns: %w", err)
	}
	if err := s.seedHomeSections(ctx); err != nil {
		return fmt.Errorf("failed to seed home sections: %w", err)
	}
	return nil
}

// DB exposes the underlying gorm handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// notFound converts gorm's sentinel into ErrNotFound with a readable subject
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return err
}
