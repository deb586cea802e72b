package nav

import (
	"sort"
	"strings"

	"github.com/rohmanhakim/sitemap-archiver/pkg/hashutil"
)

const fingerprintLength = 16

// Fingerprint identifies a NavItem list for cross-page deduplication:
// MD5 over the sorted internal URLs joined by "|", truncated to 16 hex
// characters. External links are excluded so shared-widget noise does
// not split otherwise identical menus.
func Fingerprint(items []NavItem) string {
	var urls []string
	for _, item := range items {
		if item.IsExternal || item.URL == "" {
			continue
		}
		urls = append(urls, item.URL)
	}
	if len(urls) == 0 {
		return ""
	}
	sort.Strings(urls)
	digest := hashutil.MD5Hex([]byte(strings.Join(urls, "|")))
	return digest[:fingerprintLength]
}
