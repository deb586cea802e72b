package nav

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

// sourceTypeFor maps a structural element type to a content-link
// source type. Accordions classify as FAQ; everything unmapped is
// contextual body prose.
func sourceTypeFor(element *structural.Element) string {
	if element == nil {
		return SourceContextualBody
	}
	switch element.Type() {
	case structural.TypeAccordion:
		return SourceFAQModule
	case structural.TypeFAQ, structural.TypeTOC, structural.TypeBreadcrumb,
		structural.TypeTemplateCTA, structural.TypeTestimonial,
		structural.TypeAuthorBio, structural.TypeRelatedPosts:
		return element.Type()
	default:
		return SourceContextualBody
	}
}

// extractContentLinks enumerates a[href] in document order within the
// main content region, excluding links under navigation chrome.
func extractContentLinks(doc *goquery.Document, rawHTML string, pageURL string, elements []structural.Element) []ContentLink {
	region := mainRegion(doc)

	var anchors []*goquery.Selection
	region.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		if anchor.ParentsFiltered(contentLinkExcludedAncestors).Length() > 0 {
			return
		}
		href, _ := anchor.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		anchors = append(anchors, anchor)
	})

	total := len(anchors)
	var links []ContentLink
	searchFrom := 0
	for i, anchor := range anchors {
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)

		sourceType := SourceContextualBody
		if start, _, ok := structural.Locate(rawHTML, anchor, searchFrom); ok {
			sourceType = sourceTypeFor(structural.At(start, elements))
			searchFrom = start + 1
		}
		if isJumpLink(href, pageURL) {
			sourceType = SourceTOCOrJump
		}

		links = append(links, ContentLink{
			URL:             resolveOrRaw(href, pageURL),
			Label:           contentLinkLabel(anchor),
			SourceType:      sourceType,
			NearestHeading:  nearestHeading(anchor),
			BodyPositionPct: int(math.Round(100 * float64(i) / float64(max(1, total)))),
			IsExternal:      isExternal(href, pageURL),
		})
	}
	return links
}

func mainRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range mainContentSelectors {
		region := doc.Find(selector).First()
		if region.Length() > 0 {
			return region
		}
	}
	return doc.Find("body").First()
}

// isJumpLink reports whether href is a pure anchor or a same-origin
// URL carrying a fragment.
func isJumpLink(href string, pageURL string) bool {
	if strings.HasPrefix(href, "#") {
		return len(href) > 1
	}
	if !strings.Contains(href, "#") {
		return false
	}
	linkHost, err := urlutil.Domain(href)
	if err != nil {
		return false
	}
	pageHost, err := urlutil.Domain(pageURL)
	if err != nil {
		return false
	}
	return linkHost == pageHost
}

func contentLinkLabel(anchor *goquery.Selection) string {
	if label := strings.TrimSpace(anchor.Text()); label != "" {
		return label
	}
	alt, _ := anchor.Find("img").First().Attr("alt")
	return strings.TrimSpace(alt)
}

// nearestHeading walks previous siblings, then parent previous
// siblings, returning the text of the closest preceding h1..h6.
func nearestHeading(anchor *goquery.Selection) string {
	if anchor.Length() == 0 {
		return ""
	}
	node := anchor.Get(0)
	for node != nil {
		for sibling := node.PrevSibling; sibling != nil; sibling = sibling.PrevSibling {
			if heading := lastHeadingIn(sibling); heading != "" {
				return heading
			}
		}
		node = node.Parent
		if node != nil && node.Type == html.ElementNode && node.Data == "body" {
			break
		}
	}
	return ""
}

// lastHeadingIn returns the text of the last h1..h6 within node's
// subtree, including node itself, or empty.
func lastHeadingIn(node *html.Node) string {
	if node.Type == html.ElementNode && isHeadingTag(node.Data) {
		return strings.TrimSpace(textOf(node))
	}
	for child := node.LastChild; child != nil; child = child.PrevSibling {
		if heading := lastHeadingIn(child); heading != "" {
			return heading
		}
	}
	return ""
}

func isHeadingTag(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func textOf(node *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}
