package sitemap

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitemap-archiver/internal/fetcher"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

type stubFetcher struct {
	bodies   map[string]string
	statuses map[string]int
	fail     map[string]bool
}

type stubFetchError struct{ message string }

func (e *stubFetchError) Error() string              { return e.message }
func (e *stubFetchError) Severity() failure.Severity { return failure.SeverityRecoverable }

func (s *stubFetcher) Fetch(_ context.Context, param fetcher.FetchParam) (fetcher.FetchResult, failure.ClassifiedError) {
	fetchURL := param.FetchURL()
	target := fetchURL.String()
	if s.fail[target] {
		return fetcher.FetchResult{}, &stubFetchError{message: "connection refused"}
	}
	body, ok := s.bodies[target]
	if !ok {
		return fetcher.NewFetchResultForTest(param.FetchURL(), 404, nil, "text/xml"), nil
	}
	status := s.statuses[target]
	if status == 0 {
		status = 200
	}
	return fetcher.NewFetchResultForTest(param.FetchURL(), status, []byte(body), "text/xml"), nil
}

var _ fetcher.PageFetcher = (*stubFetcher)(nil)

func urlset(locs ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		body += fmt.Sprintf("<url><loc>%s</loc></url>", loc)
	}
	return body + "</urlset>"
}

func sitemapIndex(locs ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`
	for _, loc := range locs {
		body += fmt.Sprintf("<sitemap><loc>%s</loc></sitemap>", loc)
	}
	return body + "</sitemapindex>"
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func TestDiscover_PlainUrlset(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/sitemap.xml": urlset(
				"https://example.com/",
				"https://example.com/about/",
			),
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{mustURL(t, "https://example.com/sitemap.xml")})

	require.Nil(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.com/", entries[0].Canonical())
	assert.Equal(t, "https://example.com/", entries[0].Raw())
	assert.Equal(t, "https://example.com/about", entries[1].Canonical())
	assert.Equal(t, "https://example.com/sitemap.xml", entries[0].Source())
}

func TestDiscover_IndexExpandsOneLevel(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/sitemap_index.xml": sitemapIndex(
				"https://example.com/post-sitemap.xml",
				"https://example.com/page-sitemap.xml",
			),
			"https://example.com/post-sitemap.xml": urlset("https://example.com/blog/hello"),
			"https://example.com/page-sitemap.xml": urlset("https://example.com/pricing"),
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{mustURL(t, "https://example.com/sitemap_index.xml")})

	require.Nil(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, HintPost, entries[0].TypeHint())
	assert.Equal(t, "https://example.com/post-sitemap.xml", entries[0].Source())
	assert.Equal(t, HintPage, entries[1].TypeHint())
}

func TestDiscover_DeduplicatesByCanonical(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/post-sitemap.xml": urlset(
				"https://example.com/blog/hello/",
				"https://example.com/blog/hello?utm_source=newsletter",
			),
			"https://example.com/page-sitemap.xml": urlset("https://example.com/blog/hello"),
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{
		mustURL(t, "https://example.com/post-sitemap.xml"),
		mustURL(t, "https://example.com/page-sitemap.xml"),
	})

	require.Nil(t, err)
	require.Len(t, entries, 1)
	// First-seen source and hint win.
	assert.Equal(t, "https://example.com/blog/hello", entries[0].Canonical())
	assert.Equal(t, "https://example.com/post-sitemap.xml", entries[0].Source())
	assert.Equal(t, HintPost, entries[0].TypeHint())

	// Every distinct raw form is retained for alias records.
	raws := entries[0].Raws()
	require.Len(t, raws, 3)
	assert.Equal(t, "https://example.com/blog/hello/", entries[0].Raw())
	assert.Contains(t, raws, "https://example.com/blog/hello?utm_source=newsletter")
	assert.Contains(t, raws, "https://example.com/blog/hello")
}

func TestDiscover_OneSeedFailingDoesNotAbortOthers(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/page-sitemap.xml": urlset("https://example.com/pricing"),
		},
		fail: map[string]bool{
			"https://broken.example.com/sitemap.xml": true,
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{
		mustURL(t, "https://broken.example.com/sitemap.xml"),
		mustURL(t, "https://example.com/page-sitemap.xml"),
	})

	require.Nil(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.com/pricing", entries[0].Canonical())
}

func TestDiscover_ChildSitemapFailureIsolated(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/sitemap_index.xml": sitemapIndex(
				"https://example.com/post-sitemap.xml",
				"https://example.com/page-sitemap.xml",
			),
			"https://example.com/post-sitemap.xml": "<not xml",
			"https://example.com/page-sitemap.xml": urlset("https://example.com/pricing"),
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{mustURL(t, "https://example.com/sitemap_index.xml")})

	require.Nil(t, err)
	require.Len(t, entries, 1)
}

func TestDiscover_NothingDiscoveredIsFatal(t *testing.T) {
	fetch := &stubFetcher{
		fail: map[string]bool{
			"https://example.com/sitemap.xml": true,
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{mustURL(t, "https://example.com/sitemap.xml")})

	require.NotNil(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, failure.SeverityFatal, err.Severity())
}

func TestDiscover_InvalidLocDroppedNotFatal(t *testing.T) {
	fetch := &stubFetcher{
		bodies: map[string]string{
			"https://example.com/sitemap.xml": urlset(
				"mailto:hello@example.com",
				"https://example.com/valid",
			),
		},
	}
	intake := NewIntake(&metadata.NoopSink{}, fetch, "test-agent")

	entries, err := intake.Discover(context.Background(), []url.URL{mustURL(t, "https://example.com/sitemap.xml")})

	require.Nil(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.com/valid", entries[0].Canonical())
}

func TestHintForFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{filename: "post-sitemap.xml", expected: HintPost},
		{filename: "post-sitemap2.xml", expected: HintPost},
		{filename: "page-sitemap.xml", expected: HintPage},
		{filename: "product-sitemap.xml", expected: HintProduct},
		{filename: "event-sitemap.xml", expected: HintEvent},
		{filename: "portfolio-sitemap.xml", expected: HintPortfolio},
		{filename: "category-sitemap.xml", expected: HintPagination},
		{filename: "tag-sitemap.xml", expected: HintPagination},
		{filename: "author-sitemap.xml", expected: HintPagination},
		{filename: "blog-sitemap.xml", expected: HintPost},
		{filename: "news-sitemap.xml", expected: HintPost},
		{filename: "sitemap.xml", expected: ""},
	}
	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			assert.Equal(t, tc.expected, HintForFilename(tc.filename))
		})
	}
}
