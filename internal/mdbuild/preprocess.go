package mdbuild

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

const base64MinChars = 50

var base64SrcPattern = regexp.MustCompile(`^data:image/([a-zA-Z0-9+.-]+);base64,([A-Za-z0-9+/=]+)`)

// prepareDOM applies the DOM-level conversion rules before Markdown
// rendering: absolute links, empty-anchor drop, base64 image
// sanitizing, and navigation-list suppression.
func prepareDOM(doc *goquery.Document, pageURL string, navListLinkRatio float64) {
	suppressNavLists(doc, navListLinkRatio)
	absolutizeLinks(doc, pageURL)
	dropEmptyAnchors(doc)
	sanitizeBase64Images(doc, pageURL)
}

// absolutizeLinks resolves relative hrefs against the page URL. Pure
// fragments and contact schemes stay untouched.
func absolutizeLinks(doc *goquery.Document, pageURL string) {
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		if absolute, err := urlutil.Resolve(href, pageURL); err == nil {
			anchor.SetAttr("href", absolute)
		}
	})
}

func dropEmptyAnchors(doc *goquery.Document) {
	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		if strings.TrimSpace(anchor.Text()) == "" && anchor.Find("img").Length() == 0 {
			anchor.Remove()
		}
	})
}

// sanitizeBase64Images truncates inline base64 payloads to a
// placeholder and resolves all other image sources to absolute URLs.
func sanitizeBase64Images(doc *goquery.Document, pageURL string) {
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if match := base64SrcPattern.FindStringSubmatch(src); match != nil {
			if len(match[2]) >= base64MinChars {
				img.SetAttr("src", "data:image/"+match[1]+";base64,...")
			}
			return
		}
		if strings.Contains(src, ";base64,") {
			// Malformed data URL carrying a payload anyway.
			img.SetAttr("src", "data:image/unknown;base64,...")
			return
		}
		if absolute, err := urlutil.Resolve(src, pageURL); err == nil {
			img.SetAttr("src", absolute)
		}
	})
}

// suppressNavLists removes lists whose items are mostly links; those
// belong in nav_structure, not in the Markdown body.
func suppressNavLists(doc *goquery.Document, linkRatio float64) {
	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		items := list.ChildrenFiltered("li")
		total := items.Length()
		if total == 0 {
			return
		}
		linkItems := 0
		items.Each(func(_ int, item *goquery.Selection) {
			if item.Find("a").Length() > 0 && isLinkOnlyItem(item) {
				linkItems++
			}
		})
		if float64(linkItems)/float64(total) >= linkRatio {
			list.Remove()
		}
	})
}

// isLinkOnlyItem reports whether an <li>'s text lives entirely inside
// its anchors.
func isLinkOnlyItem(item *goquery.Selection) bool {
	itemText := strings.TrimSpace(item.Text())
	var linkText strings.Builder
	item.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		linkText.WriteString(anchor.Text())
	})
	return itemText == strings.TrimSpace(linkText.String())
}
