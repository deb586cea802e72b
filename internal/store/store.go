package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Responsibilities
- SQLite schema for pages, aliases, runs, and domain overrides
- Hash-gated page upsert and alias upsert (one mutation per entity)
- Run lifecycle records

All writes are idempotent per key; re-running a crawl converges on the
same rows.
*/

type Store struct {
	db *gorm.DB
}

// Open creates the Store at dbPath, creating the parent directory and
// migrating the schema. WAL mode keeps concurrent worker writes from
// tripping over reader transactions.
func Open(dbPath string) (*Store, *StoreError) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, &StoreError{
			Message: fmt.Sprintf("creating %s: %v", dbDir, err),
			Cause:   ErrCauseOpenFailed,
		}
	}
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	return open(dsn)
}

// OpenForTesting creates a Store at an explicit path, usually inside a
// test temp directory.
func OpenForTesting(dbPath string) (*Store, *StoreError) {
	return open(dbPath)
}

func open(dsn string) (*Store, *StoreError) {
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseOpenFailed,
		}
	}

	if err := database.AutoMigrate(&Page{}, &UrlAlias{}, &CrawlRun{}, &DomainOverride{}); err != nil {
		return nil, &StoreError{
			Message: err.Error(),
			Cause:   ErrCauseMigrateFailed,
		}
	}

	return &Store{db: database}, nil
}

// DB returns the underlying GORM database instance.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func queryError(err error) *StoreError {
	return &StoreError{
		Message: err.Error(),
		Cause:   ErrCauseQueryFailed,
	}
}
