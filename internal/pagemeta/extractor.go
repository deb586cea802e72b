package pagemeta

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitemap-archiver/pkg/urlutil"
)

/*
Responsibilities
- Title, first H1, meta description with fixed priority fallbacks
- Canonical link and og:image resolved to absolute URLs
- Two-letter language code from <html lang> or http-equiv
- Multiple-H1 flag for downstream SEO reporting

Extraction never fails: unparseable documents yield a zero Meta.
*/

const maxH1Length = 500

type Extractor struct{}

func NewExtractor() Extractor {
	return Extractor{}
}

// Extract reads metadata from rawHTML. pageURL is the page's final URL,
// used to resolve relative canonical and og:image values.
func (e *Extractor) Extract(rawHTML string, pageURL string) Meta {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Meta{}
	}

	h1s := doc.Find("h1")
	firstH1 := ""
	if h1s.Length() > 0 {
		firstH1 = strings.TrimSpace(h1s.First().Text())
	}
	firstH1 = truncateRunes(firstH1, maxH1Length)

	return Meta{
		title:           extractTitle(doc, firstH1),
		h1:              firstH1,
		metaDescription: extractDescription(doc),
		canonical:       resolveAbsolute(attrOf(doc, "link[rel=canonical]", "href"), pageURL),
		ogImage:         resolveAbsolute(metaContent(doc, `meta[property="og:image"]`), pageURL),
		language:        extractLanguage(doc),
		hasMultipleH1:   h1s.Length() > 1,
	}
}

func extractTitle(doc *goquery.Document, firstH1 string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle := metaContent(doc, `meta[property="og:title"]`); ogTitle != "" {
		return ogTitle
	}
	return firstH1
}

func extractDescription(doc *goquery.Document) string {
	if desc := metaContent(doc, `meta[name="description"]`); desc != "" {
		return desc
	}
	return metaContent(doc, `meta[property="og:description"]`)
}

func extractLanguage(doc *goquery.Document) string {
	lang, _ := doc.Find("html").First().Attr("lang")
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = metaContent(doc, `meta[http-equiv="content-language"]`)
	}
	if lang == "" {
		return ""
	}
	if len(lang) > 2 {
		lang = lang[:2]
	}
	return strings.ToLower(lang)
}

// truncateRunes cuts s to at most max runes so a multi-byte character
// never gets split mid-sequence.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func attrOf(doc *goquery.Document, selector string, attr string) string {
	value, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(value)
}

func resolveAbsolute(ref string, pageURL string) string {
	if ref == "" {
		return ""
	}
	resolved, err := urlutil.Resolve(ref, pageURL)
	if err != nil {
		return ""
	}
	return resolved
}
