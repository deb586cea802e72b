package structural

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
)

/*
Responsibilities
- Position-indexed detection of FAQ, TOC, breadcrumb, CTA, accordion,
  testimonial, author-bio, and related-posts regions in raw HTML
- JSON-LD FAQPage extraction with question enumeration
- Aggregate counts for structural_stats

Offsets are byte offsets into the raw HTML string passed in, matching
the HTML the Markdown builder later sees. Dedup is by start offset.
Accordions overlapping a FAQ element are suppressed; FAQ wins.
*/

type selectorTable struct {
	typ       string
	selectors []string
}

// detectionTables is tried in order; earlier types win start-offset
// dedup ties against later ones.
var detectionTables = []selectorTable{
	{typ: TypeFAQ, selectors: []string{
		".faq", ".faqs", ".faq-section", ".faq-list", ".faq-container",
		"[class*=faq-block]", "section.questions", "dl.faq",
	}},
	{typ: TypeTOC, selectors: []string{
		".toc", "#toc", ".table-of-contents", ".ez-toc-container",
		".lwptoc", "nav.toc", "[class*=table-of-contents]",
	}},
	{typ: TypeBreadcrumb, selectors: []string{
		".breadcrumb", ".breadcrumbs", "#breadcrumbs", ".yoast-breadcrumb",
		"nav[aria-label=breadcrumb]", "[class*=breadcrumb]",
	}},
	{typ: TypeTemplateCTA, selectors: []string{
		".cta", ".call-to-action", ".cta-section", ".cta-banner",
		".cta-box", "[class*=cta-block]",
	}},
	{typ: TypeAccordion, selectors: []string{
		".accordion", "details", ".collapsible", "[data-accordion]",
		".elementor-accordion", ".wp-block-coblocks-accordion",
	}},
	{typ: TypeTestimonial, selectors: []string{
		".testimonial", ".testimonials", ".review-card",
		"[class*=testimonial]",
	}},
	{typ: TypeAuthorBio, selectors: []string{
		".author-bio", ".author-box", ".about-author", "[class*=author-bio]",
	}},
	{typ: TypeRelatedPosts, selectors: []string{
		".related-posts", ".related-articles", ".yarpp-related",
		"[class*=related-post]", ".more-from",
	}},
}

// faqQuestionSelectors harvest question texts inside a selector-matched
// FAQ region, covering common accordion widgets and definition lists.
var faqQuestionSelectors = []string{
	".faq-question", ".question", "dt", "summary",
	".accordion-title", ".accordion-header", ".elementor-tab-title",
	"h3", "h4",
}

// TypeSelectors pairs an element type with its detection selectors.
// The Markdown builder re-applies these tables to the cleaned DOM so
// marker placement agrees with raw-HTML detection.
type TypeSelectors struct {
	Type      string
	Selectors []string
}

func SelectorTables() []TypeSelectors {
	tables := make([]TypeSelectors, 0, len(detectionTables))
	for _, table := range detectionTables {
		tables = append(tables, TypeSelectors{Type: table.typ, Selectors: table.selectors})
	}
	return tables
}

func FAQQuestionSelectors() []string {
	return append([]string(nil), faqQuestionSelectors...)
}

var jsonLDScriptPattern = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

type Detector struct {
	metadataSink   metadata.MetadataSink
	tocAnchorRatio float64
}

// NewDetector builds a Detector. tocAnchorRatio is the minimum share of
// anchor links for a TOC candidate to qualify.
func NewDetector(metadataSink metadata.MetadataSink, tocAnchorRatio float64) Detector {
	return Detector{metadataSink: metadataSink, tocAnchorRatio: tocAnchorRatio}
}

// Detect finds all structural elements in rawHTML and returns them
// sorted by start offset.
func (d *Detector) Detect(rawHTML string, pageURL string) []Element {
	var elements []Element
	elements = append(elements, d.detectJSONLDFAQs(rawHTML)...)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		d.metadataSink.RecordError(
			time.Now(),
			"structural",
			"Detector.Detect",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, pageURL),
			},
		)
		return dedupAndSort(elements)
	}

	for _, table := range detectionTables {
		for _, selector := range table.selectors {
			doc.Find(selector).Each(func(_ int, match *goquery.Selection) {
				start, end, ok := Locate(rawHTML, match, 0)
				if !ok {
					return
				}
				element := Element{
					typ:      table.typ,
					start:    start,
					end:      end,
					selector: selector,
				}
				switch table.typ {
				case TypeFAQ:
					element.meta = FAQMeta{Questions: harvestQuestions(match)}
				case TypeTOC:
					ratio, count := anchorLinkRatio(match)
					if ratio < d.tocAnchorRatio {
						return
					}
					element.meta = TOCMeta{AnchorRatio: ratio, LinkCount: count}
				}
				elements = append(elements, element)
			})
		}
	}

	return suppressAccordionsInFAQs(dedupAndSort(elements))
}

// detectJSONLDFAQs scans raw HTML for ld+json FAQPage blocks. The whole
// script region is the element; questions come from mainEntity.
func (d *Detector) detectJSONLDFAQs(rawHTML string) []Element {
	var elements []Element
	for _, match := range jsonLDScriptPattern.FindAllStringSubmatchIndex(rawHTML, -1) {
		start, end := match[0], match[1]
		payload := rawHTML[match[2]:match[3]]
		questions, ok := parseFAQPage(payload)
		if !ok {
			continue
		}
		elements = append(elements, Element{
			typ:      TypeFAQ,
			start:    start,
			end:      end,
			selector: "script[type=application/ld+json]",
			meta:     FAQMeta{HasSchema: true, Questions: questions},
		})
	}
	return elements
}

// parseFAQPage decodes one ld+json payload and returns its questions
// when the payload describes a FAQPage. Top-level objects, arrays, and
// @graph containers are all accepted.
func parseFAQPage(payload string) ([]QA, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &decoded); err != nil {
		return nil, false
	}
	for _, node := range flattenLDNodes(decoded) {
		if !hasType(node, "FAQPage") {
			continue
		}
		return questionsFromMainEntity(node), true
	}
	return nil, false
}

func flattenLDNodes(decoded any) []map[string]any {
	switch v := decoded.(type) {
	case map[string]any:
		nodes := []map[string]any{v}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					nodes = append(nodes, m)
				}
			}
		}
		return nodes
	case []any:
		var nodes []map[string]any
		for _, item := range v {
			nodes = append(nodes, flattenLDNodes(item)...)
		}
		return nodes
	default:
		return nil
	}
}

func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func questionsFromMainEntity(node map[string]any) []QA {
	entities, ok := node["mainEntity"].([]any)
	if !ok {
		if single, ok := node["mainEntity"].(map[string]any); ok {
			entities = []any{single}
		}
	}
	var questions []QA
	for _, entity := range entities {
		q, ok := entity.(map[string]any)
		if !ok || !hasType(q, "Question") {
			continue
		}
		name, _ := q["name"].(string)
		answer := ""
		if accepted, ok := q["acceptedAnswer"].(map[string]any); ok {
			text, _ := accepted["text"].(string)
			answer = stripTags(text)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		questions = append(questions, QA{Question: name, Answer: answer})
	}
	return questions
}

func stripTags(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, " "))
}

// harvestQuestions collects question texts from a selector-detected FAQ
// region. Answers stay in the DOM; only questions are enumerated.
func harvestQuestions(region *goquery.Selection) []QA {
	seen := make(map[string]struct{})
	var questions []QA
	for _, selector := range faqQuestionSelectors {
		region.Find(selector).Each(func(_ int, match *goquery.Selection) {
			text := strings.TrimSpace(match.Text())
			if text == "" || len(text) > 300 {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			questions = append(questions, QA{Question: text})
		})
		if len(questions) > 0 {
			return questions
		}
	}
	return questions
}

func anchorLinkRatio(region *goquery.Selection) (float64, int) {
	links := region.Find("a[href]")
	total := links.Length()
	if total == 0 {
		return 0, 0
	}
	anchors := 0
	links.Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if strings.HasPrefix(href, "#") {
			anchors++
		}
	})
	return float64(anchors) / float64(total), total
}

// dedupAndSort drops elements sharing a start offset, keeping the
// earliest-detected one, then orders by start.
func dedupAndSort(elements []Element) []Element {
	seen := make(map[int]struct{}, len(elements))
	deduped := elements[:0]
	for _, element := range elements {
		if _, dup := seen[element.start]; dup {
			continue
		}
		seen[element.start] = struct{}{}
		deduped = append(deduped, element)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].start < deduped[j].start
	})
	return deduped
}

// suppressAccordionsInFAQs drops accordion elements whose range
// intersects a FAQ element.
func suppressAccordionsInFAQs(elements []Element) []Element {
	var faqs []Element
	for _, element := range elements {
		if element.typ == TypeFAQ {
			faqs = append(faqs, element)
		}
	}
	if len(faqs) == 0 {
		return elements
	}
	kept := elements[:0]
	for _, element := range elements {
		if element.typ == TypeAccordion && overlapsAny(element, faqs) {
			continue
		}
		kept = append(kept, element)
	}
	return kept
}

func overlapsAny(element Element, others []Element) bool {
	for _, other := range others {
		if element.start < other.end && other.start < element.end {
			return true
		}
	}
	return false
}
