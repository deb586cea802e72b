package metadata

import (
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"
)

/*
Metadata Collected
- Fetch timestamps, status codes, content types
- Crawl progress
- Failure diagnostics keyed by canonical ErrorCause

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not reorder the queue
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence crawl decisions.
*/

/*
Recorder captures structured crawl events and emits them through phuslu/log.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	logger log.Logger
}

// NewRecorder builds a Recorder whose log level comes from the LOG_LEVEL
// environment variable (debug|info|warn|error, default info) and whose
// output is human-readable when LOG_PRETTY is set. debug forces the debug
// level regardless of the environment.
func NewRecorder(debug bool) Recorder {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if debug {
		level = log.DebugLevel
	}

	logger := log.Logger{
		Level:      level,
		TimeFormat: time.RFC3339,
	}
	if os.Getenv("LOG_PRETTY") != "" {
		logger.Writer = &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		}
	}
	return Recorder{logger: logger}
}

func parseLevel(raw string) log.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	entry := r.logger.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Int("cause", int(cause)).
		Str("error", errorString)
	for _, attr := range attrs {
		entry = entry.Str(string(attr.Key), attr.Value)
	}
	entry.Msg("pipeline error")
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	fetchMode string,
	bodyBytes int,
) {
	r.logger.Debug().
		Str("url", fetchUrl).
		Int("status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Str("fetch_mode", fetchMode).
		Int("body_bytes", bodyBytes).
		Msg("fetch")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, key string, attrs []Attribute) {
	entry := r.logger.Debug().
		Str("kind", string(kind)).
		Str("key", key)
	for _, attr := range attrs {
		entry = entry.Str(string(attr.Key), attr.Value)
	}
	entry.Msg("artifact persisted")
}

func (r *Recorder) RecordProgress(crawled int, discovered int) {
	r.logger.Info().
		Int("crawled", crawled).
		Int("discovered", discovered).
		Msg("crawl progress")
}

/*
RecordFinalCrawlStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run.
  - MUST be called only after the queue drains or the run aborts.
  - The provided stats MUST be derived from orchestrator state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow or scheduling.
*/
func (r *Recorder) RecordFinalCrawlStats(
	discovered int,
	crawled int,
	skipped int,
	redirects int,
	errorCount int,
	duration time.Duration,
) {
	stats := crawlStats{
		discovered: discovered,
		crawled:    crawled,
		skipped:    skipped,
		redirects:  redirects,
		errors:     errorCount,
		durationMs: duration.Milliseconds(),
	}
	r.logger.Info().
		Int("discovered", stats.discovered).
		Int("crawled", stats.crawled).
		Int("skipped", stats.skipped).
		Int("redirects", stats.redirects).
		Int("errors", stats.errors).
		Int64("duration_ms", stats.durationMs).
		Msg("run finished")
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		fetchMode string,
		bodyBytes int,
	)
	RecordArtifact(kind ArtifactKind, key string, attrs []Attribute)
	RecordProgress(crawled int, discovered int)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		discovered int,
		crawled int,
		skipped int,
		redirects int,
		errorCount int,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink and CrawlFinalizer but does nothing.
// The orchestrator (or a test) decides whether to inject Recorder or
// NoopSink; the choice keeps metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	fetchMode string,
	bodyBytes int,
) {
}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, key string, attrs []Attribute) {}

func (n *NoopSink) RecordProgress(crawled int, discovered int) {}

func (n *NoopSink) RecordFinalCrawlStats(
	discovered int,
	crawled int,
	skipped int,
	redirects int,
	errorCount int,
	duration time.Duration,
) {
}
