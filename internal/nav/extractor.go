package nav

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
)

/*
Responsibilities
- Primary, footer, utility, language-switcher, and breadcrumb clusters
  via priority-ordered selector lists with per-cluster predicates
- Content links within the main region, classified by the structural
  element containing them
- Menu fingerprint for cross-page nav deduplication

The extractor is read-only over the raw HTML. An unparseable document
yields an empty Structure, never an error.
*/

const (
	languageSwitcherMinLinks = 2
	languageSwitcherMaxLinks = 10
	languageLabelMaxLength   = 8
	megaMenuMinItems         = 16
)

type Extractor struct {
	metadataSink    metadata.MetadataSink
	primaryMinLinks int
	footerMinLinks  int
}

func NewExtractor(metadataSink metadata.MetadataSink, primaryMinLinks int, footerMinLinks int) Extractor {
	return Extractor{
		metadataSink:    metadataSink,
		primaryMinLinks: primaryMinLinks,
		footerMinLinks:  footerMinLinks,
	}
}

// Extract builds the complete navigation structure of a page. elements
// are the structural regions detected over the same rawHTML; their
// offsets classify content links.
func (e *Extractor) Extract(rawHTML string, pageURL string, elements []structural.Element) Structure {
	started := time.Now()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		e.metadataSink.RecordError(
			time.Now(),
			"nav",
			"Extractor.Extract",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL),
			},
		)
		return Structure{}
	}

	var matched []string
	record := func(selector string) {
		if selector != "" {
			matched = append(matched, selector)
		}
	}

	primary, primarySelector := e.extractPrimary(doc, pageURL)
	record(primarySelector)
	footer, footerSelector := e.extractFooter(doc, pageURL)
	record(footerSelector)
	utility, utilitySelector := e.extractUtility(doc, pageURL)
	record(utilitySelector)
	language, languageSelector := e.extractLanguageSwitcher(doc, pageURL)
	record(languageSelector)
	breadcrumb, breadcrumbSelector := extractBreadcrumb(doc, pageURL)
	record(breadcrumbSelector)

	structure := Structure{
		PrimaryNav:       primary,
		FooterNav:        footer,
		UtilityHeader:    utility,
		LanguageSwitcher: language,
		Breadcrumb:       breadcrumb,
		ContentLinks:     extractContentLinks(doc, rawHTML, pageURL, elements),
	}
	structure.Meta = Meta{
		SelectorsMatched: matched,
		ClusterCount:     countClusters(structure),
		HasMegaMenu:      hasMegaMenu(primary),
		ExtractionTimeMs: time.Since(started).Milliseconds(),
		Fingerprint:      Fingerprint(primary),
	}
	return structure
}

// extractPrimary accepts the first selector yielding at least
// primaryMinLinks internal non-utility links, with a broad fallback.
func (e *Extractor) extractPrimary(doc *goquery.Document, pageURL string) ([]NavItem, string) {
	include := func(href string) bool { return !isUtilityHref(href) }
	for _, selector := range primaryNavSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		items := walkMenu(container, pageURL, include)
		if countInternal(items) >= e.primaryMinLinks {
			return items, selector
		}
	}
	container := doc.Find(primaryNavFallback).First()
	if container.Length() == 0 {
		return nil, ""
	}
	items := walkMenu(container, pageURL, include)
	if countInternal(items) >= e.primaryMinLinks {
		return items, primaryNavFallback
	}
	return nil, ""
}

func (e *Extractor) extractFooter(doc *goquery.Document, pageURL string) ([]NavItem, string) {
	include := func(href string) bool { return !isUtilityHref(href) }
	for _, selector := range footerNavSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		items := walkMenu(container, pageURL, include)
		if countInternal(items) >= e.footerMinLinks {
			return items, selector
		}
	}
	// Fallback: scan generic footer containers for internal links.
	for _, selector := range footerFallbackContainers {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		items := collectFlat(container, pageURL, func(href string) bool {
			return isInternalContentHref(href, pageURL)
		})
		if len(items) > footerFallbackCap {
			items = items[:footerFallbackCap]
		}
		if len(items) > 0 {
			return items, selector
		}
	}
	return nil, ""
}

// extractUtility aggregates links under utility containers plus
// header contact-scheme links, deduplicated by URL.
func (e *Extractor) extractUtility(doc *goquery.Document, pageURL string) ([]NavItem, string) {
	seen := make(map[string]struct{})
	var items []NavItem
	matchedSelector := ""

	add := func(candidates []NavItem, selector string) {
		for _, item := range candidates {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			item.Order = len(items)
			items = append(items, item)
			if matchedSelector == "" {
				matchedSelector = selector
			}
		}
	}

	for _, selector := range utilityContainerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		add(collectFlat(container, pageURL, func(string) bool { return true }), selector)
	}

	headerContacts := doc.Find(`header a[href^="tel:"], header a[href^="mailto:"]`)
	if headerContacts.Length() > 0 {
		var contacts []NavItem
		headerContacts.Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			contacts = append(contacts, NavItem{
				URL:        strings.TrimSpace(href),
				Label:      linkLabel(anchor),
				IsExternal: true,
				LinkType:   linkType(anchor),
			})
		})
		add(contacts, "header contact links")
	}
	return items, matchedSelector
}

// extractLanguageSwitcher accepts 2-10 short-labeled links. Labels fall
// back to hreflang, then to a class-derived language code.
func (e *Extractor) extractLanguageSwitcher(doc *goquery.Document, pageURL string) ([]NavItem, string) {
	for _, selector := range languageSwitcherSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		var items []NavItem
		container.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			label := linkLabel(anchor)
			if label == "" || len(label) > languageLabelMaxLength {
				if hreflang, ok := anchor.Attr("hreflang"); ok && hreflang != "" {
					label = hreflang
				} else if code := languageCodeFromClass(anchor); code != "" {
					label = code
				} else {
					return
				}
			}
			items = append(items, NavItem{
				URL:        resolveOrRaw(href, pageURL),
				Label:      label,
				Order:      len(items),
				IsExternal: isExternal(href, pageURL),
				LinkType:   linkType(anchor),
			})
		})
		if len(items) >= languageSwitcherMinLinks && len(items) <= languageSwitcherMaxLinks {
			return items, selector
		}
	}
	return nil, ""
}

// languageCodeFromClass pulls a two-letter code from classes like
// lang-en or wpml-ls-slot-fr.
func languageCodeFromClass(anchor *goquery.Selection) string {
	class, _ := anchor.Attr("class")
	for _, name := range strings.Fields(class) {
		if idx := strings.LastIndexByte(name, '-'); idx >= 0 {
			suffix := name[idx+1:]
			if len(suffix) == 2 && isAlpha(suffix) {
				return strings.ToLower(suffix)
			}
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func countInternal(items []NavItem) int {
	count := 0
	for _, item := range items {
		if !item.IsExternal {
			count++
		}
	}
	return count
}

func countClusters(s Structure) int {
	count := 0
	if len(s.PrimaryNav) > 0 {
		count++
	}
	if len(s.FooterNav) > 0 {
		count++
	}
	if len(s.UtilityHeader) > 0 {
		count++
	}
	if len(s.LanguageSwitcher) > 0 {
		count++
	}
	if len(s.Breadcrumb) > 0 {
		count++
	}
	return count
}

// hasMegaMenu flags primary navs with nested levels and a large item
// count, the shape mega-menu plugins render.
func hasMegaMenu(primary []NavItem) bool {
	if len(primary) < megaMenuMinItems {
		return false
	}
	for _, item := range primary {
		if item.Depth >= 1 {
			return true
		}
	}
	return false
}
