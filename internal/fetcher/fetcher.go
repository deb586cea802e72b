package fetcher

import (
	"context"

	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

// PageFetcher is the fetch-layer contract. Given a URL, it returns the
// terminal URL after redirects, the status code, the body bytes, and the
// content type, or a transport error. Implementations must follow HTTP
// redirects internally and expose only the terminal URL.
type PageFetcher interface {
	Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError)
}

// Compile-time interface check
var _ PageFetcher = (*HtmlFetcher)(nil)
