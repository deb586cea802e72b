package mdbuild

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type BuildErrorCause string

const (
	// ErrCauseParseFailure marks clean HTML the DOM parser rejected.
	ErrCauseParseFailure BuildErrorCause = "markdown build parse failure"
	// ErrCauseConversionFailure marks a failed HTML-to-Markdown pass.
	ErrCauseConversionFailure BuildErrorCause = "markdown conversion failure"
)

type BuildError struct {
	Message string
	Cause   BuildErrorCause
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("markdown build error: %s", e.Cause)
}

// A failed Markdown build loses the page's Markdown products but not
// the page itself; the crawl continues.
func (e *BuildError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapBuildErrorToMetadataCause(err *BuildError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseParseFailure, ErrCauseConversionFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
