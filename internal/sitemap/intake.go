package sitemap

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/rohmanhakim/sitemap-archiver/internal/fetcher"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

/*
Responsibilities
- Resolve sitemap indexes one level deep
- Parse <url><loc> entries from child sitemaps
- Annotate entries with filename-derived type hints
- Emit a deduplicated entry stream

Failure isolation: one sitemap failing never aborts the others. The only
fatal outcome is a run that discovers nothing at all.
*/

type Intake struct {
	metadataSink metadata.MetadataSink
	fetch        fetcher.PageFetcher
	userAgent    string
}

func NewIntake(metadataSink metadata.MetadataSink, fetch fetcher.PageFetcher, userAgent string) Intake {
	return Intake{
		metadataSink: metadataSink,
		fetch:        fetch,
		userAgent:    userAgent,
	}
}

// Discover expands the seed sitemaps into a deduplicated list of URL
// entries. Duplicate canonicals across sitemaps are dropped; the
// first-seen source and hint are preserved.
func (i *Intake) Discover(ctx context.Context, seeds []url.URL) ([]Entry, failure.ClassifiedError) {
	seen := make(map[string]int)
	var entries []Entry
	var failures int

	for _, seed := range seeds {
		sitemapURLs, err := i.expandSeed(ctx, seed)
		if err != nil {
			i.recordIntakeError("Intake.Discover", seed.String(), err)
			failures++
			continue
		}

		for _, childURL := range sitemapURLs {
			locs, err := i.fetchLocs(ctx, childURL, "//urlset/url/loc")
			if err != nil {
				i.recordIntakeError("Intake.Discover", childURL.String(), err)
				failures++
				continue
			}

			hint := HintForFilename(sitemapFilename(childURL))
			for _, loc := range locs {
				canonical, normErr := urlutil.Normalize(loc)
				if normErr != nil {
					i.metadataSink.RecordError(
						time.Now(),
						"sitemap",
						"Intake.Discover",
						metadata.CauseContentInvalid,
						normErr.Error(),
						[]metadata.Attribute{
							metadata.NewAttr(metadata.AttrURL, loc),
						},
					)
					continue
				}
				if idx, dup := seen[canonical]; dup {
					// Keep the raw form; it becomes its own alias row.
					if !containsString(entries[idx].raws, loc) {
						entries[idx].raws = append(entries[idx].raws, loc)
					}
					continue
				}
				seen[canonical] = len(entries)
				entries = append(entries, Entry{
					raws:      []string{loc},
					canonical: canonical,
					source:    childURL.String(),
					typeHint:  hint,
				})
			}
		}
	}

	if len(entries) == 0 {
		err := &IntakeError{
			Message: fmt.Sprintf("%d sitemap(s) processed, %d failed, zero URLs discovered", len(seeds), failures),
			Cause:   ErrCauseNoURLs,
		}
		i.recordIntakeError("Intake.Discover", "", err)
		return nil, err
	}
	return entries, nil
}

// expandSeed returns the child sitemap URLs of a seed. A sitemap index is
// expanded one level; a plain urlset sitemap expands to itself.
func (i *Intake) expandSeed(ctx context.Context, seed url.URL) ([]url.URL, *IntakeError) {
	body, err := i.fetchXML(ctx, seed)
	if err != nil {
		return nil, err
	}

	doc, parseErr := xmlquery.Parse(bytes.NewReader(body))
	if parseErr != nil {
		return nil, &IntakeError{
			Message: fmt.Sprintf("unparseable XML at %s: %v", seed.String(), parseErr),
			Cause:   ErrCauseParseFailed,
		}
	}

	if xmlquery.FindOne(doc, "//sitemapindex") == nil {
		return []url.URL{seed}, nil
	}

	var children []url.URL
	xmlquery.FindEach(doc, "//sitemapindex/sitemap/loc", func(_ int, node *xmlquery.Node) {
		loc := strings.TrimSpace(node.InnerText())
		if loc == "" {
			return
		}
		parsed, err := url.Parse(loc)
		if err != nil {
			return
		}
		children = append(children, *parsed)
	})
	return children, nil
}

// fetchLocs downloads one sitemap document and extracts its loc values.
func (i *Intake) fetchLocs(ctx context.Context, sitemapURL url.URL, query string) ([]string, *IntakeError) {
	body, err := i.fetchXML(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc, parseErr := xmlquery.Parse(bytes.NewReader(body))
	if parseErr != nil {
		return nil, &IntakeError{
			Message: fmt.Sprintf("unparseable XML at %s: %v", sitemapURL.String(), parseErr),
			Cause:   ErrCauseParseFailed,
		}
	}

	var locs []string
	xmlquery.FindEach(doc, query, func(_ int, node *xmlquery.Node) {
		loc := strings.TrimSpace(node.InnerText())
		if loc != "" {
			locs = append(locs, loc)
		}
	})
	return locs, nil
}

func (i *Intake) fetchXML(ctx context.Context, target url.URL) ([]byte, *IntakeError) {
	result, err := i.fetch.Fetch(ctx, fetcher.NewFetchParam(target, i.userAgent))
	if err != nil {
		return nil, &IntakeError{
			Message: fmt.Sprintf("fetching %s: %v", target.String(), err),
			Cause:   ErrCauseFetchFailed,
		}
	}
	if result.StatusCode() >= 400 {
		return nil, &IntakeError{
			Message: fmt.Sprintf("fetching %s: status %d", target.String(), result.StatusCode()),
			Cause:   ErrCauseFetchFailed,
		}
	}
	return result.Body(), nil
}

func (i *Intake) recordIntakeError(action string, target string, err *IntakeError) {
	attrs := []metadata.Attribute{}
	if target != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, target))
	}
	i.metadataSink.RecordError(
		time.Now(),
		"sitemap",
		action,
		mapIntakeErrorToMetadataCause(err),
		err.Message,
		attrs,
	)
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func sitemapFilename(sitemapURL url.URL) string {
	return strings.ToLower(path.Base(sitemapURL.Path))
}
