package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/rohmanhakim/sitemap-archiver/internal/config"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Follow redirects and surface the terminal URL
- Optionally throttle request rate

Fetch Semantics

- HTTP statuses are data, not errors: 404s and 500s come back as results so
  the orchestrator can classify and persist them.
- Only transport failures (DNS, TCP, timeout, body read) are errors.
- All fetches are logged with metadata.

The fetcher never parses content; it only returns bytes and metadata.
*/

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
}

// NewHtmlFetcher builds the static fetch layer. Browser mode is out of
// scope for the core; when the configuration asks for it the fetcher warns
// once and serves static HTML through the same contract.
func NewHtmlFetcher(metadataSink metadata.MetadataSink, cfg config.Config) HtmlFetcher {
	var limiter *rate.Limiter
	if rps := cfg.RequestsPerSecond(); rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	if cfg.FetchMode() == config.FetchModeBrowser {
		metadataSink.RecordError(
			time.Now(),
			"fetcher",
			"NewHtmlFetcher",
			metadata.CauseUnknown,
			"browser fetch mode is not available; falling back to static",
			[]metadata.Attribute{},
		)
	}
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   &http.Client{},
		timeout:      cfg.Timeout(),
		limiter:      limiter,
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return FetchResult{}, &FetchError{
				Message: fmt.Sprintf("cancelled while rate limited: %v", err),
				Cause:   ErrCauseCancelled,
			}
		}
	}

	result, err := h.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)
	duration := time.Since(startTime)

	if err != nil {
		var fetchError *FetchError
		errors.As(err, &fetchError)
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchParam.fetchUrl.String()),
			},
		)
		return FetchResult{}, err
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		result.statusCode,
		duration,
		result.contentType,
		string(config.FetchModeStatic),
		len(result.body),
	)
	return result, nil
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, failure.ClassifiedError) {
	reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   ErrCauseRequestInvalid,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		cause := ErrCauseNetworkFailure
		if errors.Is(err, context.DeadlineExceeded) {
			cause = ErrCauseTimeout
		} else if errors.Is(err, context.Canceled) {
			cause = ErrCauseCancelled
		}
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   cause,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   ErrCauseReadResponseBodyError,
		}
	}

	// resp.Request.URL is the terminal URL after the client followed any
	// redirect chain.
	finalURL := fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		finalURL:    finalURL,
		statusCode:  resp.StatusCode,
		body:        body,
		contentType: resp.Header.Get("Content-Type"),
	}, nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}
