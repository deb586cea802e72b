package urlutil

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

/*
Canonical URL identity.

Every URL that enters the system flows through Normalize before it is used
as a key anywhere: the queued set, the pages table, alias rows, content
links. Two URLs denote the same page iff their normalized forms are
byte-equal.

Normalization rules:
  - Scheme is required; bare host/path inputs get "https"
  - Scheme and host are lowercased
  - Default ports are omitted (:80 for http, :443 for https)
  - Fragments are removed
  - Tracking query parameters are dropped (see trackingParams)
  - Remaining query pairs are sorted lexicographically
  - Trailing slashes are stripped, except when the path is exactly "/"

Properties:
  - Pure: no state, no memory
  - Deterministic: same input always produces same output
  - Idempotent: Normalize(Normalize(url)) == Normalize(url)
  - Context-free: does not depend on crawl history
*/

// trackingParams is the fixed set of query parameters stripped during
// normalization. Keys listed here are removed exactly; the "utm_" prefix is
// additionally removed as a family. Extending this table requires no change
// anywhere else.
var trackingParams = map[string]struct{}{
	"fbclid":     {},
	"gclid":      {},
	"msclkid":    {},
	"mc_cid":     {},
	"mc_eid":     {},
	"_ga":        {},
	"_gl":        {},
	"gad_source": {},
	"ref":        {},
	"campaignid": {},
	"adgroupid":  {},
}

const trackingPrefix = "utm_"

// Normalize parses a raw URL string and returns its canonical form.
// It is total on valid absolute URLs and fails with a NormalizeError when
// the input lacks a host after scheme insertion or carries a malformed port.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &NormalizeError{
			Message: "empty URL",
			Cause:   ErrCauseNoHost,
		}
	}

	parsed, err := parseWithScheme(raw)
	if err != nil {
		return "", err
	}

	canonical := *parsed
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Validate the port now that the host is settled. url.Parse accepts
	// some malformed ports lazily; Port() panics never, but a non-numeric
	// port surfaces as a parse error above. An empty hostname with a bare
	// port is rejected here.
	if canonical.Hostname() == "" {
		return "", &NormalizeError{
			Message: fmt.Sprintf("no host in %q", raw),
			Cause:   ErrCauseNoHost,
		}
	}

	// Remove default port if present.
	if port := canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = canonical.Hostname()
		}
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = encodeFilteredQuery(canonical.Query())
	canonical.ForceQuery = false

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	return canonical.String(), nil
}

// Domain returns the lowercased hostname (without port) of a URL, or an
// error when the URL does not normalize. It is the lookup key for domain
// overrides.
func Domain(raw string) (string, error) {
	parsed, err := parseWithScheme(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	host := lowerASCII(parsed.Hostname())
	if host == "" {
		return "", &NormalizeError{
			Message: fmt.Sprintf("no host in %q", raw),
			Cause:   ErrCauseNoHost,
		}
	}
	return host, nil
}

// Resolve resolves a possibly-relative reference against a base URL and
// normalizes the result.
func Resolve(ref string, base string) (string, error) {
	baseURL, err := parseWithScheme(strings.TrimSpace(base))
	if err != nil {
		return "", err
	}
	refURL, parseErr := url.Parse(strings.TrimSpace(ref))
	if parseErr != nil {
		return "", &NormalizeError{
			Message: fmt.Sprintf("unparseable reference %q: %v", ref, parseErr),
			Cause:   ErrCauseMalformed,
		}
	}
	return Normalize(baseURL.ResolveReference(refURL).String())
}

// IsValid reports whether a raw URL normalizes successfully.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// Equivalent reports whether two raw URLs share a canonical form.
// Either failing to normalize makes the pair non-equivalent.
func Equivalent(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

// parseWithScheme parses the raw URL, inserting the https scheme when the
// input has none.
func parseWithScheme(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, &NormalizeError{
			Message: fmt.Sprintf("unparseable URL %q: %v", raw, err),
			Cause:   ErrCauseMalformed,
		}
	}

	if parsed.Scheme == "" || parsed.Host == "" && parsed.Opaque == "" && !strings.HasPrefix(raw, "/") {
		// "example.com/path" parses as a path with no host; reparse with
		// an explicit scheme so the host lands in the right place.
		if !strings.Contains(raw, "://") {
			reparsed, rerr := url.Parse("https://" + strings.TrimPrefix(raw, "//"))
			if rerr != nil {
				return nil, &NormalizeError{
					Message: fmt.Sprintf("unparseable URL %q: %v", raw, rerr),
					Cause:   ErrCauseMalformed,
				}
			}
			return reparsed, nil
		}
	}
	return parsed, nil
}

// encodeFilteredQuery drops tracking parameters and re-encodes the rest
// with query pairs sorted lexicographically by key, then value.
func encodeFilteredQuery(values url.Values) string {
	type pair struct{ key, val string }
	var pairs []pair
	for key, vals := range values {
		if isTrackingParam(key) {
			continue
		}
		for _, v := range vals {
			pairs = append(pairs, pair{key: key, val: v})
		}
	}
	if len(pairs) == 0 {
		return ""
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].val < pairs[j].val
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.val))
	}
	return b.String()
}

func isTrackingParam(key string) bool {
	lower := lowerASCII(key)
	if strings.HasPrefix(lower, trackingPrefix) {
		return true
	}
	_, tracked := trackingParams[lower]
	return tracked
}

// lowerASCII converts ASCII characters to lowercase without allocating
// when the input is already lowercase.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
