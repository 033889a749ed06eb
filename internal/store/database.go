package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amaumene/dono/internal/models"
)

const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

// Options selects and configures the persistence backend
type Options struct {
	Driver   string
	Path     string
	ReadOnly bool
}

// DB owns the single persistence handle shared by every history log
type DB struct {
	driver string
	bolt   *bolthold.Store
	sql    *gorm.DB
	logger *logrus.Logger
}

// Table is an append-only collection of one record type
type Table[T any] interface {
	// Append stores rec and sets its row ID
	Append(ctx context.Context, rec *T) error
	// Latest returns up to n records ordered by timestamp then row ID, newest
	// first. n <= 0 returns every record.
	Latest(ctx context.Context, n int) ([]T, error)
	Count(ctx context.Context) (int, error)
}

// Open opens the database named by opts.Driver
func Open(opts Options, logger *logrus.Logger) (*DB, error) {
	switch opts.Driver {
	case DriverBolt, "":
		return openBolt(opts, logger)
	case DriverSQLite:
		return openSQLite(opts, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func openBolt(opts Options, logger *logrus.Logger) (*DB, error) {
	s, err := bolthold.Open(opts.Path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout:  1 * time.Second,
			ReadOnly: opts.ReadOnly,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"driver":    DriverBolt,
		"path":      opts.Path,
		"read_only": opts.ReadOnly,
	}).Debug("Database opened")

	return &DB{driver: DriverBolt, bolt: s, logger: logger}, nil
}

func openSQLite(opts Options, logger *logrus.Logger) (*DB, error) {
	dsn := opts.Path
	if opts.ReadOnly {
		dsn = "file:" + opts.Path + "?mode=ro"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if !opts.ReadOnly {
		if err := db.AutoMigrate(&models.Video{}, &models.Track{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"driver":    DriverSQLite,
		"path":      opts.Path,
		"read_only": opts.ReadOnly,
	}).Debug("Database opened")

	return &DB{driver: DriverSQLite, sql: db, logger: logger}, nil
}

// Driver returns the backend name
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.bolt != nil {
		return db.bolt.Close()
	}
	sqlDB, err := db.sql.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewTable returns the table holding records of type T
func NewTable[T any](db *DB) Table[T] {
	if db.bolt != nil {
		return &boltTable[T]{store: db.bolt}
	}
	return &sqlTable[T]{db: db.sql}
}
