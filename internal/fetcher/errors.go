package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseRequestInvalid        FetchErrorCause = "request could not be built"
	ErrCauseCancelled             FetchErrorCause = "cancelled"
)

// FetchError covers transport-level failures only. HTTP error statuses are
// not fetch errors; the orchestrator classifies those from the status code.
type FetchError struct {
	Message string
	Cause   FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

// Severity is always recoverable: a failed fetch becomes an ERROR page and
// the worker moves on. There is no retry policy in the core.
func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseCancelled:
		return metadata.CauseNetworkFailure
	case ErrCauseReadResponseBodyError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
