package nav

import (
	"net/url"
	"strings"

	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

// isUtilityHref reports whether a href is a contact-scheme or social
// link. Utility links are excluded from primary and footer clusters
// and aggregated into utility_header instead.
func isUtilityHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, prefix := range utilityPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return isSocialHref(lower)
}

func isSocialHref(href string) bool {
	parsed, err := url.Parse(href)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(parsed.Hostname(), "www."))
	_, social := socialDomains[host]
	return social
}

func isContactScheme(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	for _, prefix := range utilityPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// resolveOrRaw resolves href against the page URL, keeping the raw
// value for schemes the normalizer rejects (tel:, mailto:).
func resolveOrRaw(href string, pageURL string) string {
	if isContactScheme(href) {
		return strings.TrimSpace(href)
	}
	resolved, err := urlutil.Resolve(href, pageURL)
	if err != nil {
		return strings.TrimSpace(href)
	}
	return resolved
}

// isExternal reports whether href points off the page's host.
func isExternal(href string, pageURL string) bool {
	if isContactScheme(href) {
		return true
	}
	resolved, err := urlutil.Resolve(href, pageURL)
	if err != nil {
		return false
	}
	linkHost, err := urlutil.Domain(resolved)
	if err != nil {
		return false
	}
	pageHost, err := urlutil.Domain(pageURL)
	if err != nil {
		return false
	}
	return linkHost != pageHost
}

// isInternalContentHref accepts links that belong in primary/footer
// clusters: non-utility, non-placeholder.
func isInternalContentHref(href string, pageURL string) bool {
	if href == "" {
		return false
	}
	if isUtilityHref(href) {
		return false
	}
	return !isExternal(href, pageURL)
}
