package fetcher

import (
	"net/url"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (p FetchParam) FetchURL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) UserAgent() string {
	return p.userAgent
}

// FetchResult is the terminal outcome of one fetch. Redirects are followed
// internally by the HTTP client; only the terminal URL is surfaced.
// Intermediate hops are not reconstructed anywhere in the system.
type FetchResult struct {
	finalURL    url.URL
	statusCode  int
	body        []byte
	contentType string
}

func (f *FetchResult) FinalURL() url.URL {
	return f.finalURL
}

func (f *FetchResult) StatusCode() int {
	return f.statusCode
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) ContentType() string {
	return f.contentType
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	finalURL url.URL,
	statusCode int,
	body []byte,
	contentType string,
) FetchResult {
	return FetchResult{
		finalURL:    finalURL,
		statusCode:  statusCode,
		body:        body,
		contentType: contentType,
	}
}
