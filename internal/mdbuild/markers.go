package mdbuild

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
)

/*
Structural markers ride through Markdown conversion as alphanumeric
sentinels the converter cannot escape or reflow, then become HTML
comments afterwards. Sentinels sit in their own paragraphs so they
always land on their own Markdown line.
*/

// markerTypes maps structural element types to marker TYPE tokens.
var markerTypes = map[string]string{
	structural.TypeFAQ:          "FAQ",
	structural.TypeTOC:          "TOC",
	structural.TypeBreadcrumb:   "BREADCRUMB",
	structural.TypeTemplateCTA:  "CTA",
	structural.TypeAccordion:    "ACCORDION",
	structural.TypeTestimonial:  "TESTIMONIAL",
	structural.TypeAuthorBio:    "AUTHOR",
	structural.TypeRelatedPosts: "RELATED",
}

const markerRole = `START|END|Q|A|ITEM`

var sentinelPattern = regexp.MustCompile(`ZZSTRUCTZZ([A-Z]+)ZZ(` + markerRole + `)ZZ`)

// StripMarkersPattern removes structural markers when deriving plain
// Markdown from the enhanced form.
var StripMarkersPattern = regexp.MustCompile(`<!-- STRUCT:[A-Z_]+:[A-Z_]+ -->`)

func sentinel(markerType, role string) string {
	return fmt.Sprintf("ZZSTRUCTZZ%sZZ%sZZ", markerType, role)
}

func sentinelParagraph(markerType, role string) string {
	return "<p>" + sentinel(markerType, role) + "</p>"
}

// insertSentinels wraps every structural region in the cleaned DOM with
// START/END sentinels, re-applying the detection selector tables. FAQ
// regions additionally get Q/A sentinels around their question
// elements. Each node is marked at most once; accordions inside a
// marked FAQ are skipped, the same precedence detection applies.
func insertSentinels(doc *goquery.Document) {
	markedNodes := make(map[*html.Node]struct{})
	faqNodes := make(map[*html.Node]struct{})

	for _, table := range structural.SelectorTables() {
		markerType := markerTypes[table.Type]
		for _, selector := range table.Selectors {
			doc.Find(selector).Each(func(_ int, region *goquery.Selection) {
				if region.Length() == 0 {
					return
				}
				node := region.Get(0)
				if _, dup := markedNodes[node]; dup {
					return
				}
				if table.Type == structural.TypeAccordion && hasAncestorIn(node, faqNodes) {
					return
				}
				region.BeforeHtml(sentinelParagraph(markerType, "START"))
				region.AfterHtml(sentinelParagraph(markerType, "END"))
				if table.Type == structural.TypeFAQ {
					insertFAQItemSentinels(region)
					faqNodes[node] = struct{}{}
				}
				markedNodes[node] = struct{}{}
			})
		}
	}
}

func hasAncestorIn(node *html.Node, candidates map[*html.Node]struct{}) bool {
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if _, ok := candidates[parent]; ok {
			return true
		}
	}
	return false
}

// insertFAQItemSentinels marks each question element and the answer
// content that follows it.
func insertFAQItemSentinels(region *goquery.Selection) {
	for _, selector := range structural.FAQQuestionSelectors() {
		questions := region.Find(selector)
		if questions.Length() == 0 {
			continue
		}
		questions.Each(func(_ int, question *goquery.Selection) {
			question.BeforeHtml(sentinelParagraph("FAQ", "Q"))
			question.AfterHtml(sentinelParagraph("FAQ", "A"))
		})
		return
	}
}

// replaceSentinels turns surviving sentinels into structural comment
// markers after Markdown conversion.
func replaceSentinels(markdown string) string {
	return sentinelPattern.ReplaceAllString(markdown, "<!-- STRUCT:$1:$2 -->")
}

// schemaFAQBlock renders a Markdown FAQ section for JSON-LD FAQPage
// elements. The script region itself never survives cleaning, so the
// questions are re-emitted from the parsed schema.
func schemaFAQBlock(meta structural.FAQMeta) string {
	if len(meta.Questions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<!-- STRUCT:FAQ:START -->\n")
	for _, qa := range meta.Questions {
		b.WriteString("\n<!-- STRUCT:FAQ:Q -->\n\n")
		b.WriteString("**" + qa.Question + "**\n")
		if qa.Answer != "" {
			b.WriteString("\n<!-- STRUCT:FAQ:A -->\n\n")
			b.WriteString(qa.Answer + "\n")
		}
	}
	b.WriteString("\n<!-- STRUCT:FAQ:END -->")
	return b.String()
}
