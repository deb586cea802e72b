package store

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type StoreErrorCause string

const (
	// ErrCauseOpenFailed marks a database that could not be opened.
	ErrCauseOpenFailed StoreErrorCause = "database open failed"
	// ErrCauseMigrateFailed marks a failed schema migration.
	ErrCauseMigrateFailed StoreErrorCause = "schema migration failed"
	// ErrCauseQueryFailed marks a failed read or write.
	ErrCauseQueryFailed StoreErrorCause = "query failed"
)

type StoreError struct {
	Message string
	Cause   StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
}

// A database that cannot open or migrate leaves nowhere to persist
// anything; individual query failures lose one page, not the run.
func (e *StoreError) Severity() failure.Severity {
	if e.Cause == ErrCauseOpenFailed || e.Cause == ErrCauseMigrateFailed {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailed, ErrCauseMigrateFailed, ErrCauseQueryFailed:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
