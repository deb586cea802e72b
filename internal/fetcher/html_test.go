package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitemap-archiver/internal/config"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	seed, err := url.Parse("https://example.com/sitemap.xml")
	require.NoError(t, err)
	cfg, err := config.WithDefault([]url.URL{*seed}).
		WithTimeout(5 * time.Second).
		WithDBPath(t.TempDir() + "/test.db").
		Build()
	require.NoError(t, err)
	return cfg
}

func fetchURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, config.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := NewHtmlFetcher(&metadata.NoopSink{}, testConfig(t))
	result, err := f.Fetch(context.Background(), NewFetchParam(fetchURL(t, server.URL+"/page"), config.DefaultUserAgent))
	require.Nil(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode())
	assert.Contains(t, string(result.Body()), "hello")
	assert.Contains(t, result.ContentType(), "text/html")
	terminalURL := result.FinalURL()
	assert.Equal(t, server.URL+"/page", terminalURL.String())
}

func TestFetchSurfacesTerminalURLAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>moved here</body></html>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewHtmlFetcher(&metadata.NoopSink{}, testConfig(t))
	result, err := f.Fetch(context.Background(), NewFetchParam(fetchURL(t, server.URL+"/old"), "ua"))
	require.Nil(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode())
	terminalURL := result.FinalURL()
	assert.Equal(t, server.URL+"/new", terminalURL.String())
	assert.Contains(t, string(result.Body()), "moved here")
}

func TestFetchErrorStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewHtmlFetcher(&metadata.NoopSink{}, testConfig(t))
	result, err := f.Fetch(context.Background(), NewFetchParam(fetchURL(t, server.URL+"/missing"), "ua"))
	require.Nil(t, err)
	assert.Equal(t, http.StatusNotFound, result.StatusCode())
}

func TestFetchTransportFailure(t *testing.T) {
	// A closed server port triggers a transport error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := server.URL
	server.Close()

	f := NewHtmlFetcher(&metadata.NoopSink{}, testConfig(t))
	_, err := f.Fetch(context.Background(), NewFetchParam(fetchURL(t, dead+"/x"), "ua"))
	require.NotNil(t, err)

	fetchErr, ok := err.(*FetchError)
	require.True(t, ok)
	assert.Equal(t, ErrCauseNetworkFailure, fetchErr.Cause)
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	seed := fetchURL(t, "https://example.com/sitemap.xml")
	cfg, buildErr := config.WithDefault([]url.URL{seed}).
		WithTimeout(50 * time.Millisecond).
		WithDBPath(t.TempDir() + "/test.db").
		Build()
	require.NoError(t, buildErr)

	f := NewHtmlFetcher(&metadata.NoopSink{}, cfg)
	_, err := f.Fetch(context.Background(), NewFetchParam(fetchURL(t, server.URL), "ua"))
	require.NotNil(t, err)

	fetchErr, ok := err.(*FetchError)
	require.True(t, ok)
	assert.Equal(t, ErrCauseTimeout, fetchErr.Cause)
}

func TestFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHtmlFetcher(&metadata.NoopSink{}, testConfig(t))
	_, err := f.Fetch(ctx, NewFetchParam(fetchURL(t, server.URL), "ua"))
	require.NotNil(t, err)
}
