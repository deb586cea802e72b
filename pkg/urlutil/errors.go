package urlutil

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type NormalizeErrorCause string

const (
	// ErrCauseNoHost marks inputs with no usable host after scheme insertion.
	ErrCauseNoHost NormalizeErrorCause = "no host"
	// ErrCauseMalformed marks inputs the URL parser rejects outright,
	// including malformed ports.
	ErrCauseMalformed NormalizeErrorCause = "malformed URL"
)

// NormalizeError is the InvalidURL failure of the system. URLs that fail
// normalization are dropped with a warning; they are never counted as crawl
// errors, so the severity is always recoverable.
type NormalizeError struct {
	Message string
	Cause   NormalizeErrorCause
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("invalid URL: %s: %s", e.Cause, e.Message)
}

func (e *NormalizeError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
