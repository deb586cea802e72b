package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/sitemap-archiver/internal/content"
	"github.com/rohmanhakim/sitemap-archiver/internal/fetcher"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/store"
	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
	"github.com/rohmanhakim/sitemap-archiver/pkg/hashutil"
	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

/*
 Per-URL pipeline

 fetch → classify → clean → page metadata → content extraction →
 structural detection → nav extraction → Markdown build → hash →
 persist page + aliases.

 Failure semantics:
 - Transport failures become ERROR page rows with last_error set.
 - HTTP statuses are data: 404/410 → NOT_FOUND, other ≥400 → ERROR,
   2xx → OK subject to the soft-404 post-check.
 - Persistence failures are logged and the worker moves on; the page
   write is attempted before the alias writes and either can fail
   without corrupting the other.
*/

func (o *Orchestrator) processJob(
	ctx context.Context,
	runID string,
	job Job,
	fetchSlots *atomic.Int64,
) jobOutcome {
	callerMethod := "Orchestrator.processJob"

	// The page cap is enforced by slot reservation; jobs past the cap
	// drain to idle as skips. Only successful fetches consume a slot,
	// so failures hand theirs back.
	if fetchSlots.Add(1) > int64(o.cfg.MaxPages()) {
		return jobOutcome{skipped: true}
	}

	requestURL, parseErr := url.Parse(job.canonical)
	if parseErr != nil {
		fetchSlots.Add(-1)
		o.metadataSink.RecordError(
			time.Now(),
			"crawler",
			callerMethod,
			metadata.CauseContentInvalid,
			parseErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, job.canonical),
				metadata.NewAttr(metadata.AttrRunID, runID),
			},
		)
		return jobOutcome{errored: true}
	}

	result, fetchErr := o.pageFetcher.Fetch(ctx, fetcher.NewFetchParam(*requestURL, o.cfg.UserAgent()))
	seenAt := time.Now()
	if fetchErr != nil {
		fetchSlots.Add(-1)
		o.persistFetchFailure(runID, job, fetchErr.Error(), seenAt)
		return jobOutcome{crawled: true, errored: true}
	}

	terminalURL := result.FinalURL()
	finalCanonical, normErr := urlutil.Normalize(terminalURL.String())
	if normErr != nil {
		finalCanonical = terminalURL.String()
	}
	redirected := finalCanonical != job.canonical
	var chain []string
	if redirected {
		chain = []string{job.canonical, finalCanonical}
	}
	statusCode := result.StatusCode()

	// A redirect into a page that already has a row gets a shell row
	// under the requested canonical instead of a second extraction; the
	// redirect chain points at the terminal page.
	if redirected && o.terminalAlreadyStored(finalCanonical) {
		o.persistRedirectShell(runID, job, statusCode, chain, seenAt)
		o.persistAliases(runID, job.originals, finalCanonical, statusCode, chain, seenAt)
		return jobOutcome{crawled: true, redirect: true}
	}

	crawlStatus := classifyStatus(statusCode)
	page := &store.Page{
		FinalURL:             finalCanonical,
		StatusCode:           statusCode,
		CrawlStatus:          crawlStatus,
		RequestedURLOriginal: job.originals[0],
		FetchMode:            string(o.cfg.FetchMode()),
		RunID:                runID,
		LastCrawledAt:        seenAt,
	}
	if err := page.SetRedirectChainArray(chain); err != nil {
		o.recordStoreIssue(callerMethod, runID, finalCanonical, err.Error())
	}
	if job.typeHint != "" {
		hint := job.typeHint
		page.SitemapTypeHint = &hint
	}

	outcome := jobOutcome{crawled: true, redirect: redirected}
	if crawlStatus == store.CrawlStatusOK {
		o.extractAndFill(page, result.Body(), finalCanonical)
	} else {
		fetchSlots.Add(-1)
		lastError := fmt.Sprintf("http status %d", statusCode)
		page.LastError = &lastError
		outcome.errored = true
	}

	if storeErr := o.store.UpsertPage(page); storeErr != nil {
		o.recordStoreIssue(callerMethod, runID, finalCanonical, storeErr.Error())
	} else {
		o.processedFinals.Store(finalCanonical, struct{}{})
		o.metadataSink.RecordArtifact(metadata.ArtifactPage, finalCanonical, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrRunID, runID),
		})
	}
	o.persistAliases(runID, job.originals, finalCanonical, statusCode, chain, seenAt)
	return outcome
}

// extractAndFill runs the content half of the pipeline over a 2xx body
// and fills the page's content and metadata columns in place.
func (o *Orchestrator) extractAndFill(page *store.Page, body []byte, finalCanonical string) {
	rawHTML := string(body)
	page.HTMLContent = &rawHTML

	if rawHash, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3); err == nil {
		page.RawHash = &rawHash
	}

	domain, _ := urlutil.Domain(finalCanonical)
	override := o.overrides.ForDomain(domain)
	if override.ForceFetchMode != "" {
		page.FetchMode = override.ForceFetchMode
	}

	cleaned := o.cleaner.Clean(rawHTML, finalCanonical, override.RemoveSelectors)
	meta := o.pageMeta.Extract(rawHTML, finalCanonical)
	extracted := o.content.Extract(cleaned, override.ContentSelectors)
	elements := o.detector.Detect(rawHTML, finalCanonical)
	structure := o.nav.Extract(rawHTML, finalCanonical, elements)

	cleanHTML := extracted.CleanHTML()
	wordCount := extracted.WordCount()
	method := extracted.Method()
	junk := extracted.JunkScore()
	page.CleanHTML = &cleanHTML
	page.WordCount = &wordCount
	page.ExtractionMethod = &method
	page.JunkScore = &junk

	bodyText := cleanHTML
	mdResult, buildErr := o.builder.Build(cleanHTML, finalCanonical, elements, meta.H1())
	if buildErr == nil {
		enhanced := mdResult.Enhanced()
		plain := mdResult.Plain()
		page.MarkdownEnhanced = &enhanced
		page.Markdown = &plain
		bodyText = plain
	}

	if contentHash := content.Hash(cleanHTML); contentHash != "" {
		page.ContentHash = &contentHash
		if first, loaded := o.seenHashes.LoadOrStore(contentHash, finalCanonical); loaded {
			if firstURL := first.(string); firstURL != finalCanonical {
				o.metadataSink.RecordArtifact(metadata.ArtifactDuplicateContent, contentHash, []metadata.Attribute{
					metadata.NewAttr(metadata.AttrURL, finalCanonical),
					metadata.NewAttr(metadata.AttrMessage, "content matches "+firstURL),
				})
			}
		}
	}

	setIfNonEmpty(&page.Title, meta.Title())
	setIfNonEmpty(&page.H1, meta.H1())
	setIfNonEmpty(&page.MetaDescription, meta.MetaDescription())
	setIfNonEmpty(&page.Language, meta.Language())

	if err := page.SetNavStructure(structure); err != nil {
		o.recordStoreIssue("Orchestrator.extractAndFill", page.RunID, finalCanonical, err.Error())
	}
	if err := page.SetStructuralStats(structural.Stats(elements)); err != nil {
		o.recordStoreIssue("Orchestrator.extractAndFill", page.RunID, finalCanonical, err.Error())
	}

	if content.LooksSoft404(meta.Title(), bodyText) && wordCount < o.cfg.Soft404MaxWords() {
		page.CrawlStatus = store.CrawlStatusSoft404
	}
}

// persistFetchFailure records a transport failure as an ERROR page row
// so the URL stays queryable by run.
func (o *Orchestrator) persistFetchFailure(runID string, job Job, message string, seenAt time.Time) {
	lastError := message
	page := &store.Page{
		FinalURL:             job.canonical,
		CrawlStatus:          store.CrawlStatusError,
		RequestedURLOriginal: job.originals[0],
		FetchMode:            string(o.cfg.FetchMode()),
		RunID:                runID,
		LastCrawledAt:        seenAt,
		LastError:            &lastError,
	}
	if job.typeHint != "" {
		hint := job.typeHint
		page.SitemapTypeHint = &hint
	}
	if storeErr := o.store.UpsertPage(page); storeErr != nil {
		o.recordStoreIssue("Orchestrator.persistFetchFailure", runID, job.canonical, storeErr.Error())
	}
	o.persistAliases(runID, job.originals, job.canonical, 0, nil, seenAt)
}

// persistRedirectShell writes the REDIRECT_ALIAS row kept under the
// requested canonical when the redirect target was already extracted.
func (o *Orchestrator) persistRedirectShell(runID string, job Job, statusCode int, chain []string, seenAt time.Time) {
	page := &store.Page{
		FinalURL:             job.canonical,
		StatusCode:           statusCode,
		CrawlStatus:          store.CrawlStatusRedirectAlias,
		RequestedURLOriginal: job.originals[0],
		FetchMode:            string(o.cfg.FetchMode()),
		RunID:                runID,
		LastCrawledAt:        seenAt,
	}
	if err := page.SetRedirectChainArray(chain); err != nil {
		o.recordStoreIssue("Orchestrator.persistRedirectShell", runID, job.canonical, err.Error())
	}
	if job.typeHint != "" {
		hint := job.typeHint
		page.SitemapTypeHint = &hint
	}
	if storeErr := o.store.UpsertPage(page); storeErr != nil {
		o.recordStoreIssue("Orchestrator.persistRedirectShell", runID, job.canonical, storeErr.Error())
	}
}

// persistAliases writes one alias row per raw requested form. Aliases
// are always written, even when the page itself was skipped.
func (o *Orchestrator) persistAliases(
	runID string,
	requestedForms []string,
	finalCanonical string,
	statusCode int,
	chain []string,
	seenAt time.Time,
) {
	for _, requested := range requestedForms {
		alias := &store.UrlAlias{
			RequestedURL: requested,
			FinalURL:     finalCanonical,
			StatusCode:   statusCode,
			RunID:        runID,
			FirstSeenAt:  seenAt,
			LastSeenAt:   seenAt,
		}
		if err := alias.SetRedirectChainArray(chain); err != nil {
			o.recordStoreIssue("Orchestrator.persistAliases", runID, requested, err.Error())
			continue
		}
		if storeErr := o.store.UpsertAlias(alias); storeErr != nil {
			o.recordStoreIssue("Orchestrator.persistAliases", runID, requested, storeErr.Error())
			continue
		}
		o.metadataSink.RecordArtifact(metadata.ArtifactAlias, requested, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, finalCanonical),
			metadata.NewAttr(metadata.AttrRunID, runID),
		})
	}
}

// terminalAlreadyStored reports whether the redirect target already has
// a page row, either from this run or from an earlier one when the
// existence skip is in force.
func (o *Orchestrator) terminalAlreadyStored(finalCanonical string) bool {
	if _, processed := o.processedFinals.Load(finalCanonical); processed {
		return true
	}
	if o.cfg.Recrawl() {
		return false
	}
	exists, queryErr := o.store.PageExists(finalCanonical)
	return queryErr == nil && exists
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode == 404 || statusCode == 410:
		return store.CrawlStatusNotFound
	case statusCode >= 400:
		return store.CrawlStatusError
	default:
		return store.CrawlStatusOK
	}
}

func setIfNonEmpty(target **string, value string) {
	if value == "" {
		return
	}
	*target = &value
}

func (o *Orchestrator) recordStoreIssue(callerMethod string, runID string, key string, message string) {
	o.metadataSink.RecordError(
		time.Now(),
		"crawler",
		callerMethod,
		metadata.CauseStorageFailure,
		message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, key),
			metadata.NewAttr(metadata.AttrRunID, runID),
		},
	)
}
