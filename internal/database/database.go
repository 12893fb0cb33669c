package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/storyhub/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

type options struct {
	logLevel logger.LogLevel
}

// Option customizes NewDatabase.
type Option func(*options)

// WithLogLevel sets the gorm logger level (Info by default).
func WithLogLevel(level logger.LogLevel) Option {
	return func(o *options) { o.logLevel = level }
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{logLevel: logger.Info}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Category{},
		&entities.ContentSource{},
		&entities.FieldMapping{},
		&entities.Ebook{},
		&entities.EbookChapter{},
		&entities.Setting{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// dsn enables foreign keys on every pooled connection so chapter and
// mapping rows follow their parent on delete.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}
