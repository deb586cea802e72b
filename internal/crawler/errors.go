package crawler

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type CrawlErrorCause string

const (
	// ErrCauseIntakeFailed marks a run where sitemap discovery produced
	// nothing to crawl.
	ErrCauseIntakeFailed CrawlErrorCause = "sitemap intake failed"
	// ErrCauseRunSetup marks a failure to open the run record before any
	// page work started.
	ErrCauseRunSetup CrawlErrorCause = "run setup failed"
)

// CrawlError is an orchestrator-level failure. Per-page failures are not
// CrawlErrors; they become ERROR page rows and counters.
type CrawlError struct {
	Message string
	Cause   CrawlErrorCause
}

func (e *CrawlError) Error() string {
	return fmt.Sprintf("crawl error: %s: %s", e.Cause, e.Message)
}

// Severity: any orchestrator-level failure aborts the run; there is
// nothing to degrade to once intake or run setup has failed.
func (e *CrawlError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func mapCrawlErrorToMetadataCause(err *CrawlError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseIntakeFailed:
		return metadata.CauseContentInvalid
	case ErrCauseRunSetup:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
