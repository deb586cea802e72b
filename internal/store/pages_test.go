package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenForTesting(filepath.Join(t.TempDir(), "test.db"))
	require.Nil(t, err)
	return s
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func basePage(finalURL, runID string) *Page {
	return &Page{
		FinalURL:             finalURL,
		StatusCode:           200,
		CrawlStatus:          CrawlStatusOK,
		RequestedURLOriginal: finalURL,
		FetchMode:            "static",
		RunID:                runID,
		HTMLContent:          strPtr("<html><body><p>hello</p></body></html>"),
		CleanHTML:            strPtr("<p>hello</p>"),
		Markdown:             strPtr("hello"),
		MarkdownEnhanced:     strPtr("hello"),
		ContentHash:          strPtr("hash-v1"),
		Title:                strPtr("Hello"),
		WordCount:            intPtr(1),
		JunkScore:            floatPtr(0.1),
		LastCrawledAt:        time.Now(),
	}
}

func TestUpsertPage_InsertThenFetch(t *testing.T) {
	s := newTestStore(t)

	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	page, err := s.GetPageByFinalURL("https://example.com/a")
	require.Nil(t, err)
	require.NotNil(t, page)
	assert.Equal(t, CrawlStatusOK, page.CrawlStatus)
	assert.Equal(t, "hash-v1", *page.ContentHash)
}

func TestUpsertPage_HashGatePreservesUnchangedContent(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	// Same content hash, new run: content columns must stay put.
	second := basePage("https://example.com/a", "run-2")
	second.HTMLContent = strPtr("DIFFERENT RAW SERVED BYTES")
	second.CleanHTML = strPtr("DIFFERENT CLEAN")
	second.ContentHash = strPtr("hash-v1")

	require.Nil(t, s.UpsertPage(second))

	page, err := s.GetPageByFinalURL("https://example.com/a")
	require.Nil(t, err)
	assert.Equal(t, "<p>hello</p>", *page.CleanHTML)
	assert.Equal(t, "<html><body><p>hello</p></body></html>", *page.HTMLContent)
	assert.Equal(t, "run-2", page.RunID)
}

func TestUpsertPage_HashChangeUpdatesContent(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	second := basePage("https://example.com/a", "run-2")
	second.HTMLContent = strPtr("<html><body><p>new</p></body></html>")
	second.CleanHTML = strPtr("<p>new</p>")
	second.ContentHash = strPtr("hash-v2")

	require.Nil(t, s.UpsertPage(second))

	page, err := s.GetPageByFinalURL("https://example.com/a")
	require.Nil(t, err)
	assert.Equal(t, "<p>new</p>", *page.CleanHTML)
	assert.Equal(t, "hash-v2", *page.ContentHash)
}

func TestUpsertPage_NullHashPreservesContent(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	// A failed extraction provides no hash and no content.
	second := &Page{
		FinalURL:      "https://example.com/a",
		StatusCode:    500,
		CrawlStatus:   CrawlStatusError,
		RunID:         "run-2",
		LastError:     strPtr("boom"),
		LastCrawledAt: time.Now(),
	}
	require.Nil(t, s.UpsertPage(second))

	page, err := s.GetPageByFinalURL("https://example.com/a")
	require.Nil(t, err)
	assert.Equal(t, "<p>hello</p>", *page.CleanHTML)
	assert.Equal(t, "hash-v1", *page.ContentHash)
	assert.Equal(t, "Hello", *page.Title)
	assert.Equal(t, CrawlStatusError, page.CrawlStatus)
	assert.Equal(t, "boom", *page.LastError)
}

func TestUpsertPage_MarkdownUpdatesWhenNonNull(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	second := basePage("https://example.com/a", "run-2")
	second.Markdown = strPtr("improved markdown")
	second.MarkdownEnhanced = strPtr("improved enhanced")
	second.ContentHash = strPtr("hash-v1")

	require.Nil(t, s.UpsertPage(second))

	page, err := s.GetPageByFinalURL("https://example.com/a")
	require.Nil(t, err)
	assert.Equal(t, "improved markdown", *page.Markdown)
	assert.Equal(t, "improved enhanced", *page.MarkdownEnhanced)
	// Content stayed gated.
	assert.Equal(t, "<p>hello</p>", *page.CleanHTML)
}

func TestPageExists(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	exists, err := s.PageExists("https://example.com/a")
	require.Nil(t, err)
	assert.True(t, exists)

	exists, err = s.PageExists("https://example.com/missing")
	require.Nil(t, err)
	assert.False(t, exists)
}

func TestGetPageByFinalURL_MissingIsNil(t *testing.T) {
	s := newTestStore(t)

	page, err := s.GetPageByFinalURL("https://example.com/none")
	require.Nil(t, err)
	assert.Nil(t, page)
}

func TestFindPageByContentHash(t *testing.T) {
	s := newTestStore(t)
	require.Nil(t, s.UpsertPage(basePage("https://example.com/a", "run-1")))

	duplicate := basePage("https://example.com/b", "run-1")
	require.Nil(t, s.UpsertPage(duplicate))

	first, err := s.FindPageByContentHash("hash-v1")
	require.Nil(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "https://example.com/a", first.FinalURL)
}

func TestPage_JSONColumns(t *testing.T) {
	page := &Page{}
	require.NoError(t, page.SetRedirectChainArray([]string{"https://a", "https://b"}))
	assert.Equal(t, []string{"https://a", "https://b"}, page.GetRedirectChainArray())

	require.NoError(t, page.SetStructuralStats(map[string]int{"faq_modules": 2}))
	assert.Equal(t, 2, page.GetStructuralStats()["faq_modules"])
}
