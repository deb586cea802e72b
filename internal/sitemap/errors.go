package sitemap

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type IntakeErrorCause string

const (
	// ErrCauseFetchFailed marks a sitemap that could not be downloaded.
	ErrCauseFetchFailed IntakeErrorCause = "sitemap fetch failed"
	// ErrCauseParseFailed marks sitemap XML the parser rejected.
	ErrCauseParseFailed IntakeErrorCause = "sitemap parse failed"
	// ErrCauseNoURLs marks a run where every sitemap failed or was empty.
	// This is the only fatal intake outcome.
	ErrCauseNoURLs IntakeErrorCause = "no URLs discovered"
)

type IntakeError struct {
	Message string
	Cause   IntakeErrorCause
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("sitemap intake error: %s", e.Cause)
}

// Severity: a single sitemap failing is recoverable (the others continue);
// discovering nothing at all aborts the run before any work.
func (e *IntakeError) Severity() failure.Severity {
	if e.Cause == ErrCauseNoURLs {
		return failure.SeverityFatal
	}
	return failure.SeverityRecoverable
}

func mapIntakeErrorToMetadataCause(err *IntakeError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseFetchFailed:
		return metadata.CauseNetworkFailure
	case ErrCauseParseFailed, ErrCauseNoURLs:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
