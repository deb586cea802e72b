package metadata

import (
	"time"
)

type FetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	fetchMode   string
	bodyBytes   int
}

/*
crawlStats
  - Represents a terminal, derived summary of a completed run
  - Contains only aggregate counts and durations
  - Is computed by the orchestrator after the queue drains
  - Is recorded exactly once
  - Must not influence scheduling or crawl termination
  - Must be constructed without reading metadata
*/
type crawlStats struct {
	discovered int
	crawled    int
	skipped    int
	redirects  int
	errors     int
	durationMs int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.
	Non-goals:
	 - ErrorCause does not encode severity.
	 - ErrorCause does not imply crawl termination.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - TCP timeouts
  - DNS resolution failures
  - Connection resets
  - sitemap fetch timeout

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - Unparseable sitemap XML
  - Empty or unextractable document bodies
  - Broken DOM preventing extraction
  - URLs failing normalization

# CauseStorageFailure

Meaning:
  - Failure while persisting pages, aliases, or run records.

Examples:
  - Database unreachable
  - Constraint violations
  - Disk full

# CauseInvariantViolation

Meaning:
  - A system-level invariant was violated.

Examples:
  - A persisted final URL that is not in canonical form
  - Unbalanced structural markers
  - Internal consistency checks failing
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL     AttributeKey = "url"
	AttrDomain  AttributeKey = "domain"
	AttrRunID   AttributeKey = "run_id"
	AttrField   AttributeKey = "field"
	AttrMessage AttributeKey = "message"
)

type ArtifactKind string

const (
	// ArtifactPage marks a persisted page row.
	ArtifactPage ArtifactKind = "page"
	// ArtifactAlias marks a persisted requested-to-final alias row.
	ArtifactAlias ArtifactKind = "alias"
	// ArtifactDuplicateContent marks a page whose content hash matches an
	// earlier page at a different URL. Reported for analysis only; both
	// rows are kept.
	ArtifactDuplicateContent ArtifactKind = "duplicate_content"
)
