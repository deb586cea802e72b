package nav

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxBreadcrumbLabel = 100

var breadcrumbSeparators = map[string]struct{}{
	">": {}, "»": {}, "/": {}, "|": {}, "·": {}, "→": {}, "::": {}, "-": {},
}

// extractBreadcrumb tokenizes anchor and span text inside candidate
// containers, dropping separators and over-long items. When the
// structured pass yields fewer than two items, a text-split fallback
// applies.
func extractBreadcrumb(doc *goquery.Document, pageURL string) ([]BreadcrumbItem, string) {
	for _, selector := range breadcrumbContainerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}
		items := tokenizeBreadcrumb(container, pageURL)
		if len(items) < 2 {
			items = splitBreadcrumbText(container.Text())
		}
		if len(items) >= 2 {
			return items, selector
		}
	}
	return nil, ""
}

func tokenizeBreadcrumb(container *goquery.Selection, pageURL string) []BreadcrumbItem {
	var items []BreadcrumbItem
	seen := make(map[string]struct{})

	container.Find("a, span").Each(func(_ int, token *goquery.Selection) {
		// Spans nested inside anchors duplicate the anchor text.
		if goquery.NodeName(token) == "span" {
			if token.ParentsFiltered("a").Length() > 0 || token.Find("a").Length() > 0 {
				return
			}
		}
		label := strings.TrimSpace(token.Text())
		if label == "" || len(label) > maxBreadcrumbLabel {
			return
		}
		if _, sep := breadcrumbSeparators[label]; sep {
			return
		}
		if _, dup := seen[label]; dup {
			return
		}
		seen[label] = struct{}{}

		item := BreadcrumbItem{Label: label, Position: len(items)}
		if goquery.NodeName(token) == "a" {
			if href, ok := token.Attr("href"); ok && strings.TrimSpace(href) != "" && href != "#" {
				item.URL = resolveOrRaw(href, pageURL)
			}
		}
		items = append(items, item)
	})
	return items
}

// splitBreadcrumbText is the fallback for containers rendered as plain
// text with separator characters.
func splitBreadcrumbText(text string) []BreadcrumbItem {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '>' || r == '»' || r == '/' || r == '|' || r == '·' || r == '→'
	})
	var items []BreadcrumbItem
	for _, field := range fields {
		label := strings.TrimSpace(field)
		if label == "" || len(label) > maxBreadcrumbLabel {
			continue
		}
		items = append(items, BreadcrumbItem{Label: label, Position: len(items)})
	}
	return items
}
