package structural

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
)

const testPageURL = "https://example.com/page"

func newTestDetector() Detector {
	return NewDetector(&metadata.NoopSink{}, 0.5)
}

func elementsOfType(elements []Element, typ string) []Element {
	var out []Element
	for _, e := range elements {
		if e.Type() == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestDetect_JSONLDFAQPage(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><p>intro</p>` +
		`<script type="application/ld+json">{"@context":"https://schema.org","@type":"FAQPage","mainEntity":[` +
		`{"@type":"Question","name":"What is it?","acceptedAnswer":{"@type":"Answer","text":"<p>A thing.</p>"}},` +
		`{"@type":"Question","name":"How much?","acceptedAnswer":{"@type":"Answer","text":"Ten dollars."}}` +
		`]}</script></body></html>`

	elements := d.Detect(raw, testPageURL)

	faqs := elementsOfType(elements, TypeFAQ)
	require.Len(t, faqs, 1)

	meta, ok := faqs[0].Meta().(FAQMeta)
	require.True(t, ok)
	assert.True(t, meta.HasSchema)
	require.Len(t, meta.Questions, 2)
	assert.Equal(t, "What is it?", meta.Questions[0].Question)
	assert.Equal(t, "A thing.", meta.Questions[0].Answer)

	// The element covers the whole script region.
	region := raw[faqs[0].Start():faqs[0].End()]
	assert.True(t, strings.HasPrefix(region, "<script"))
	assert.True(t, strings.HasSuffix(region, "</script>"))
}

func TestDetect_JSONLDGraphContainer(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><script type="application/ld+json">` +
		`{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},` +
		`{"@type":"FAQPage","mainEntity":[{"@type":"Question","name":"Q1","acceptedAnswer":{"text":"A1"}}]}]}` +
		`</script></body></html>`

	elements := d.Detect(raw, testPageURL)

	faqs := elementsOfType(elements, TypeFAQ)
	require.Len(t, faqs, 1)
	meta := faqs[0].Meta().(FAQMeta)
	assert.Equal(t, "Q1", meta.Questions[0].Question)
}

func TestDetect_SelectorFAQWithQuestions(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><div class="faq">` +
		`<div class="faq-question">First question?</div><p>First answer.</p>` +
		`<div class="faq-question">Second question?</div><p>Second answer.</p>` +
		`</div></body></html>`

	elements := d.Detect(raw, testPageURL)

	faqs := elementsOfType(elements, TypeFAQ)
	require.Len(t, faqs, 1)
	meta := faqs[0].Meta().(FAQMeta)
	assert.False(t, meta.HasSchema)
	require.Len(t, meta.Questions, 2)
	assert.Equal(t, "First question?", meta.Questions[0].Question)
	assert.Empty(t, meta.Questions[0].Answer)
}

func TestDetect_TOCRequiresAnchorRatio(t *testing.T) {
	d := newTestDetector()

	qualifying := `<html><body><div class="toc">` +
		`<a href="#one">One</a><a href="#two">Two</a><a href="/other">Other</a>` +
		`</div></body></html>`
	elements := d.Detect(qualifying, testPageURL)
	tocs := elementsOfType(elements, TypeTOC)
	require.Len(t, tocs, 1)
	meta := tocs[0].Meta().(TOCMeta)
	assert.InDelta(t, 2.0/3.0, meta.AnchorRatio, 0.001)
	assert.Equal(t, 3, meta.LinkCount)

	failing := `<html><body><div class="toc">` +
		`<a href="#one">One</a><a href="/a">A</a><a href="/b">B</a>` +
		`</div></body></html>`
	elements = d.Detect(failing, testPageURL)
	assert.Empty(t, elementsOfType(elements, TypeTOC))
}

func TestDetect_AccordionSuppressedInsideFAQ(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><div class="faq">` +
		`<div class="accordion"><div class="accordion-title">Q?</div><p>A.</p></div>` +
		`</div></body></html>`

	elements := d.Detect(raw, testPageURL)

	assert.NotEmpty(t, elementsOfType(elements, TypeFAQ))
	assert.Empty(t, elementsOfType(elements, TypeAccordion))
}

func TestDetect_StandaloneAccordionKept(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><div class="accordion"><p>details</p></div></body></html>`

	elements := d.Detect(raw, testPageURL)

	assert.Len(t, elementsOfType(elements, TypeAccordion), 1)
}

func TestDetect_OffsetsMatchRawHTML(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body><p>before</p><div class="breadcrumb"><a href="/">Home</a> &gt; Page</div><p>after</p></body></html>`

	elements := d.Detect(raw, testPageURL)

	crumbs := elementsOfType(elements, TypeBreadcrumb)
	require.Len(t, crumbs, 1)
	region := raw[crumbs[0].Start():crumbs[0].End()]
	assert.True(t, strings.HasPrefix(region, `<div class="breadcrumb">`))
	assert.True(t, strings.HasSuffix(region, "</div>"))
}

func TestDetect_AllTypes(t *testing.T) {
	d := newTestDetector()
	raw := `<html><body>` +
		`<div class="breadcrumbs"><a href="/">Home</a></div>` +
		`<div class="cta-banner"><a href="/signup">Sign up</a></div>` +
		`<div class="testimonial"><p>Great product.</p></div>` +
		`<div class="author-box"><p>About the author.</p></div>` +
		`<div class="related-posts"><a href="/other">Other post</a></div>` +
		`</body></html>`

	elements := d.Detect(raw, testPageURL)
	stats := Stats(elements)

	assert.Equal(t, 1, stats["breadcrumbs"])
	assert.Equal(t, 1, stats["template_ctas"])
	assert.Equal(t, 1, stats["testimonials"])
	assert.Equal(t, 1, stats["author_bios"])
	assert.Equal(t, 1, stats["related_posts"])
	assert.Equal(t, 0, stats["faq_modules"])
}

func TestDetect_DedupByStartOffset(t *testing.T) {
	d := newTestDetector()
	// Matches both .breadcrumb and [class*=breadcrumb] at the same start.
	raw := `<html><body><div class="breadcrumb"><a href="/">Home</a></div></body></html>`

	elements := d.Detect(raw, testPageURL)

	assert.Len(t, elementsOfType(elements, TypeBreadcrumb), 1)
}

func TestAt_InnermostWins(t *testing.T) {
	elements := []Element{
		NewElementForTest(TypeFAQ, 0, 100, ".faq", nil),
		NewElementForTest(TypeTOC, 20, 40, ".toc", nil),
	}

	hit := At(30, elements)
	require.NotNil(t, hit)
	assert.Equal(t, TypeTOC, hit.Type())

	outer := At(50, elements)
	require.NotNil(t, outer)
	assert.Equal(t, TypeFAQ, outer.Type())

	assert.Nil(t, At(200, elements))
}

func TestStats_ZeroValued(t *testing.T) {
	stats := Stats(nil)
	assert.Len(t, stats, 8)
	for key, count := range stats {
		assert.Zero(t, count, key)
	}
}
