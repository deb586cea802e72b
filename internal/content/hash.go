package content

import (
	"strings"

	"github.com/rohmanhakim/sitemap-archiver/pkg/hashutil"
)

// Hash computes the content hash of clean HTML: MD5 over the
// whitespace-normalized form. Stable across runs for identical
// normalized input; whitespace-only churn does not change it.
func Hash(cleanHTML string) string {
	normalized := normalizeWhitespace(cleanHTML)
	if normalized == "" {
		return ""
	}
	return hashutil.MD5Hex([]byte(normalized))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
