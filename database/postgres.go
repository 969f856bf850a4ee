package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quill/domain"
)

// DB wraps the shared gorm connection.
type DB struct {
	Gorm *gorm.DB

	DSN string
}

// NewDB returns an unopened DB for the given connection string.
func NewDB(dsn string) *DB {
	return &DB{
		DSN: dsn,
	}
}

// Open connects to postgres. TranslateError is on so the crud layer can
// recognize unique constraint losers as gorm.ErrDuplicatedKey, which is
// what makes the follow operation race-safe. In production the SQL log
// is dialed down to warnings.
func Open(db *DB, isProd bool) (err error) {
	if db.DSN == "" {
		return fmt.Errorf("dsn required")
	}
	logMode := logger.Info
	if isProd {
		logMode = logger.Warn
	}
	db.Gorm, err = gorm.Open(postgres.Open(db.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("err opening gorm postgres connection: %w", err)
	}
	return nil
}

// AutoMigrate creates or updates the tables of all entities. The unique
// composite index on follows (follower_id, author_id) comes out of the
// model tags here; it is the storage-level half of the follow contract.
func AutoMigrate(db *DB) error {
	err := db.Gorm.AutoMigrate(
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	)
	if err != nil {
		return fmt.Errorf("err migrating: %w", err)
	}
	return nil
}

// Close closes the underlying sql connection.
func Close(db *DB) error {
	if db.Gorm == nil {
		return nil
	}
	sqlDB, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
