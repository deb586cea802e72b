package cleaner

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
)

/*
Responsibilities
- Strip scripts, styles, chrome, ads, and landmark regions from raw HTML
- Apply domain-provided removal selectors in the same pass
- Drop HTML comments and anchors with no text and no image descendant
- Return the cleaned body's inner HTML

Cleaning is best-effort. A parse failure returns the input unmodified
with a recorded warning; the pipeline never fails here.
*/

// removeSelectors is the fixed removal pass applied to every page.
// Domain overrides append to it, never replace it.
var removeSelectors = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	".banner", ".ad-banner", ".cookie-banner", ".cookie-notice",
	".menu", ".nav-menu", ".navbar", ".mega-menu",
	".sidebar", ".widget-area",
	".modal", ".popup", ".overlay",
	".ad", ".ads", ".advertisement", ".adsbygoogle",
	".share-buttons", ".social-share",
	".comments", "#comments",
	"[role=banner]",
	"[role=navigation]",
	"[role=complementary]",
	"[role=contentinfo]",
	"[role=dialog]",
	"[role=search]",
}

type Cleaner struct {
	metadataSink metadata.MetadataSink
}

func NewCleaner(metadataSink metadata.MetadataSink) Cleaner {
	return Cleaner{metadataSink: metadataSink}
}

// Clean strips non-content markup from rawHTML and returns the body's
// inner HTML. extraSelectors come from per-domain overrides.
func (c *Cleaner) Clean(rawHTML string, pageURL string, extraSelectors []string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		c.metadataSink.RecordError(
			time.Now(),
			"cleaner",
			"Cleaner.Clean",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL),
			},
		)
		return rawHTML
	}

	for _, selector := range removeSelectors {
		doc.Find(selector).Remove()
	}
	for _, selector := range extraSelectors {
		doc.Find(selector).Remove()
	}

	removeComments(doc)
	removeEmptyAnchors(doc)

	body := doc.Find("body")
	if body.Length() == 0 {
		return rawHTML
	}
	cleaned, err := body.Html()
	if err != nil {
		c.metadataSink.RecordError(
			time.Now(),
			"cleaner",
			"Cleaner.Clean",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL),
			},
		)
		return rawHTML
	}
	return strings.TrimSpace(cleaned)
}

// removeComments walks the node tree and detaches comment nodes.
// goquery has no selector for comments, so this works on the raw tree.
func removeComments(doc *goquery.Document) {
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		child := node.FirstChild
		for child != nil {
			next := child.NextSibling
			if child.Type == html.CommentNode {
				node.RemoveChild(child)
			} else {
				walk(child)
			}
			child = next
		}
	}
	for _, node := range doc.Nodes {
		walk(node)
	}
}

// removeEmptyAnchors drops anchors carrying neither text nor an image
// descendant. These are icon links and tracking pixels, not content.
func removeEmptyAnchors(doc *goquery.Document) {
	doc.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		if strings.TrimSpace(anchor.Text()) != "" {
			return
		}
		if anchor.Find("img").Length() > 0 {
			return
		}
		anchor.Remove()
	})
}
