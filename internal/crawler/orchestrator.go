package crawler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rohmanhakim/sitemap-archiver/internal/cleaner"
	"github.com/rohmanhakim/sitemap-archiver/internal/config"
	"github.com/rohmanhakim/sitemap-archiver/internal/content"
	"github.com/rohmanhakim/sitemap-archiver/internal/fetcher"
	"github.com/rohmanhakim/sitemap-archiver/internal/mdbuild"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/nav"
	"github.com/rohmanhakim/sitemap-archiver/internal/overrides"
	"github.com/rohmanhakim/sitemap-archiver/internal/pagemeta"
	"github.com/rohmanhakim/sitemap-archiver/internal/report"
	"github.com/rohmanhakim/sitemap-archiver/internal/sitemap"
	"github.com/rohmanhakim/sitemap-archiver/internal/store"
	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

/*
 Orchestrator is the sole control-plane authority of the crawl.

 Admission guarantees:
 - The orchestrator is the ONLY component allowed to decide whether a
   URL enters the work queue.
 - Normalization, in-run dedup, the existence skip, and the max-pages
   cap are all applied before a job reaches a worker.
 - Pipeline stages may detect and classify failure, but never decide
   continuation or abortion.

 Worker model:
 - A fixed pool of workers drains one jobs channel.
 - The in-memory queued set is populated at enqueue only; workers rely
   on the final_url uniqueness of the page table and the hash-gated
   upsert for correctness when two workers finish near-identical
   redirects concurrently.
 - Counters are atomic and folded into the run record once, after the
   queue drains.

 Metadata emission is observational only and MUST NOT influence
 scheduling or crawl termination.
*/

type Orchestrator struct {
	cfg            config.Config
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	store          *store.Store

	intake      sitemap.Intake
	pageFetcher fetcher.PageFetcher
	overrides   *overrides.Service
	cleaner     cleaner.Cleaner
	pageMeta    pagemeta.Extractor
	content     content.Extractor
	detector    structural.Detector
	nav         nav.Extractor
	builder     mdbuild.Builder

	// seenHashes maps content hash to the first canonical URL that
	// produced it; used only for duplicate-content reporting.
	seenHashes sync.Map
	// processedFinals records canonical final URLs fully processed in
	// this run so redirect targets are not extracted twice.
	processedFinals sync.Map
}

func NewOrchestrator(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	crawlFinalizer metadata.CrawlFinalizer,
	s *store.Store,
) *Orchestrator {
	htmlFetcher := fetcher.NewHtmlFetcher(metadataSink, cfg)
	return NewOrchestratorWithFetcher(cfg, metadataSink, crawlFinalizer, s, &htmlFetcher)
}

// NewOrchestratorWithFetcher creates an Orchestrator with an injected
// fetch layer. Tests provide a stub fetcher to exercise the pipeline
// without real network access.
func NewOrchestratorWithFetcher(
	cfg config.Config,
	metadataSink metadata.MetadataSink,
	crawlFinalizer metadata.CrawlFinalizer,
	s *store.Store,
	pageFetcher fetcher.PageFetcher,
) *Orchestrator {
	return &Orchestrator{
		cfg:            cfg,
		metadataSink:   metadataSink,
		crawlFinalizer: crawlFinalizer,
		store:          s,
		intake:         sitemap.NewIntake(metadataSink, pageFetcher, cfg.UserAgent()),
		pageFetcher:    pageFetcher,
		overrides:      overrides.NewService(metadataSink, s),
		cleaner:        cleaner.NewCleaner(metadataSink),
		pageMeta:       pagemeta.NewExtractor(),
		content:        content.NewExtractor(cfg.ReadabilityMinWords()),
		detector:       structural.NewDetector(metadataSink, cfg.TocAnchorRatio()),
		nav:            nav.NewExtractor(metadataSink, cfg.PrimaryNavMinLinks(), cfg.FooterNavMinLinks()),
		builder:        mdbuild.NewBuilder(metadataSink, cfg.NavListLinkRatio()),
	}
}

// Run executes one full crawl: sitemap intake, enqueue with dedup and
// the existence skip, concurrent page processing, and run finalization.
// Per-page failures become ERROR rows and counters; only intake and run
// setup failures abort.
func (o *Orchestrator) Run(ctx context.Context) (report.Summary, failure.ClassifiedError) {
	callerMethod := "Orchestrator.Run"
	startTime := time.Now()
	runID := uuid.NewString()

	entries, intakeErr := o.intake.Discover(ctx, o.cfg.SeedSitemaps())
	if intakeErr != nil && intakeErr.Severity() == failure.SeverityFatal {
		crawlErr := &CrawlError{Message: intakeErr.Error(), Cause: ErrCauseIntakeFailed}
		o.recordError(callerMethod, crawlErr, runID)
		return report.Summary{}, crawlErr
	}

	seedStrings := make([]string, 0, len(o.cfg.SeedSitemaps()))
	for _, seed := range o.cfg.SeedSitemaps() {
		seedStrings = append(seedStrings, seed.String())
	}
	if storeErr := o.store.CreateRun(runID, seedStrings); storeErr != nil {
		crawlErr := &CrawlError{Message: storeErr.Error(), Cause: ErrCauseRunSetup}
		o.recordError(callerMethod, crawlErr, runID)
		return report.Summary{}, crawlErr
	}

	discovered := len(entries)

	var crawled atomic.Int64
	var skipped atomic.Int64
	var redirects atomic.Int64
	var errorCount atomic.Int64
	var fetchSlots atomic.Int64

	jobs := make(chan Job)
	var wg sync.WaitGroup
	for range o.cfg.Concurrency() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				outcome := o.processJob(ctx, runID, job, &fetchSlots)
				if outcome.skipped {
					skipped.Add(1)
				}
				if outcome.redirect {
					redirects.Add(1)
				}
				if outcome.errored {
					errorCount.Add(1)
				}
				if outcome.crawled {
					n := crawled.Add(1)
					if every := o.cfg.ProgressEvery(); every > 0 && n%int64(every) == 0 {
						o.metadataSink.RecordProgress(int(n), discovered)
					}
				}
			}
		}()
	}

	queued := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if _, dup := queued[entry.Canonical()]; dup {
			continue
		}
		queued[entry.Canonical()] = struct{}{}

		if !o.cfg.Recrawl() {
			existing, queryErr := o.store.GetPageByFinalURL(entry.Canonical())
			if queryErr == nil && existing != nil {
				skipped.Add(1)
				o.persistAliases(runID, entry.Raws(), existing.FinalURL, existing.StatusCode, nil, time.Now())
				continue
			}
		}

		jobs <- Job{
			canonical: entry.Canonical(),
			originals: entry.Raws(),
			source:    entry.Source(),
			typeHint:  entry.TypeHint(),
		}
	}
	close(jobs)
	wg.Wait()

	runStatus := store.RunStatusFinished
	if ctx.Err() != nil {
		runStatus = store.RunStatusAborted
	}
	stats := store.RunStats{
		Discovered: discovered,
		Crawled:    int(crawled.Load()),
		Skipped:    int(skipped.Load()),
		Redirects:  int(redirects.Load()),
		Errors:     int(errorCount.Load()),
	}
	if storeErr := o.store.FinishRun(runID, runStatus, stats); storeErr != nil {
		o.metadataSink.RecordError(
			time.Now(),
			"crawler",
			callerMethod,
			metadata.CauseStorageFailure,
			storeErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrRunID, runID),
			},
		)
	}

	duration := time.Since(startTime)
	o.crawlFinalizer.RecordFinalCrawlStats(
		stats.Discovered,
		stats.Crawled,
		stats.Skipped,
		stats.Redirects,
		stats.Errors,
		duration,
	)

	return report.Summary{
		RunID:      runID,
		Discovered: stats.Discovered,
		Crawled:    stats.Crawled,
		Skipped:    stats.Skipped,
		Redirects:  stats.Redirects,
		Errors:     stats.Errors,
		Duration:   duration,
	}, nil
}

// DryRun performs sitemap intake only and prints what a real run would
// enqueue. No fetches beyond the sitemaps themselves, no writes.
func (o *Orchestrator) DryRun(ctx context.Context, w io.Writer) failure.ClassifiedError {
	entries, intakeErr := o.intake.Discover(ctx, o.cfg.SeedSitemaps())
	if intakeErr != nil && intakeErr.Severity() == failure.SeverityFatal {
		crawlErr := &CrawlError{Message: intakeErr.Error(), Cause: ErrCauseIntakeFailed}
		o.recordError("Orchestrator.DryRun", crawlErr, "")
		return crawlErr
	}

	fmt.Fprintf(w, "dry run: %d URLs discovered\n", len(entries))
	const sampleSize = 10
	for i, entry := range entries {
		if i == sampleSize {
			fmt.Fprintf(w, "  ... and %d more\n", len(entries)-sampleSize)
			break
		}
		hint := entry.TypeHint()
		if hint == "" {
			hint = "-"
		}
		fmt.Fprintf(w, "  %s (%s)\n", entry.Canonical(), hint)
	}
	return nil
}

func (o *Orchestrator) recordError(callerMethod string, err *CrawlError, runID string) {
	attrs := []metadata.Attribute{}
	if runID != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrRunID, runID))
	}
	o.metadataSink.RecordError(
		time.Now(),
		"crawler",
		callerMethod,
		mapCrawlErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
}
