package mdbuild

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
)

const buildPageURL = "https://example.com/blog/post"

func newTestBuilder() Builder {
	return NewBuilder(&metadata.NoopSink{}, 0.8)
}

func markerCount(markdown, typ, role string) int {
	return strings.Count(markdown, "<!-- STRUCT:"+typ+":"+role+" -->")
}

func TestBuild_BasicConversion(t *testing.T) {
	b := newTestBuilder()
	html := `<h1>Title</h1><p>Some <strong>bold</strong> prose.</p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "# Title")
	assert.Contains(t, result.Enhanced(), "**bold**")
	assert.Equal(t, result.Enhanced(), result.Plain())
}

func TestBuild_FAQMarkersBalanced(t *testing.T) {
	b := newTestBuilder()
	html := `<div class="faq">` +
		`<h3>What is it?</h3><p>A thing for things.</p>` +
		`<h3>How much?</h3><p>Ten dollars.</p>` +
		`</div>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	enhanced := result.Enhanced()
	assert.Equal(t, 1, markerCount(enhanced, "FAQ", "START"))
	assert.Equal(t, 1, markerCount(enhanced, "FAQ", "END"))
	assert.Equal(t, 2, markerCount(enhanced, "FAQ", "Q"))
	assert.Equal(t, 2, markerCount(enhanced, "FAQ", "A"))
	assert.Less(t, strings.Index(enhanced, "<!-- STRUCT:FAQ:START -->"), strings.Index(enhanced, "What is it?"))

	// The plain form carries content but no markers.
	assert.NotContains(t, result.Plain(), "STRUCT:")
	assert.Contains(t, result.Plain(), "What is it?")
}

func TestBuild_SchemaFAQAppended(t *testing.T) {
	b := newTestBuilder()
	elements := []structural.Element{
		structural.NewElementForTest(structural.TypeFAQ, 0, 10, "script[type=application/ld+json]", structural.FAQMeta{
			HasSchema: true,
			Questions: []structural.QA{{Question: "What is it?", Answer: "A thing."}},
		}),
	}

	result, err := b.Build(`<p>Body prose here.</p>`, buildPageURL, elements, "")

	require.Nil(t, err)
	enhanced := result.Enhanced()
	assert.Equal(t, 1, markerCount(enhanced, "FAQ", "START"))
	assert.Equal(t, 1, markerCount(enhanced, "FAQ", "END"))
	assert.Contains(t, enhanced, "**What is it?**")
	assert.Contains(t, enhanced, "A thing.")
}

func TestBuild_PlainDerivedFromEnhanced(t *testing.T) {
	b := newTestBuilder()
	html := `<div class="cta-banner"><p>Sign up today</p></div><p>prose</p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Equal(t, 1, markerCount(result.Enhanced(), "CTA", "START"))
	assert.Equal(t, result.Plain(), DerivePlain(result.Enhanced()))
	assert.NotContains(t, result.Plain(), "STRUCT")
	assert.NotRegexp(t, regexp.MustCompile(`\n{3,}`), result.Plain())
}

func TestBuild_LinksAbsolutized(t *testing.T) {
	b := newTestBuilder()
	html := `<p><a href="/pricing">Pricing</a> and <a href="#jump">jump</a>.</p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "(https://example.com/pricing)")
	assert.Contains(t, result.Enhanced(), "(#jump)")
}

func TestBuild_Base64ImageStripped(t *testing.T) {
	b := newTestBuilder()
	payload := strings.Repeat("A", 100)
	html := `<p><img src="data:image/png;base64,` + payload + `" alt=""></p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "data:image/png;base64,...")
	assert.NotRegexp(t, regexp.MustCompile(`[A-Za-z0-9+/=]{51,}`), result.Enhanced())
}

func TestBuild_NavListSuppressed(t *testing.T) {
	b := newTestBuilder()
	var items strings.Builder
	for i := 0; i < 10; i++ {
		items.WriteString(`<li><a href="/p` + string(rune('0'+i)) + `">Item</a></li>`)
	}
	html := `<ul>` + items.String() + `</ul><p>real prose stays</p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.NotContains(t, result.Enhanced(), "Item")
	assert.Contains(t, result.Enhanced(), "real prose stays")
}

func TestBuild_ContentListKept(t *testing.T) {
	b := newTestBuilder()
	html := `<ul>
		<li>plain point one</li>
		<li>plain point two</li>
		<li><a href="/ref">one reference</a></li>
	</ul>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "plain point one")
}

func TestBuild_HeadingHierarchyNormalized(t *testing.T) {
	b := newTestBuilder()
	html := `<h1>Top</h1><h3>Skipped</h3><h2>Back</h2>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "# Top")
	assert.Contains(t, result.Enhanced(), "## Skipped")
	assert.NotContains(t, result.Enhanced(), "### Skipped")
}

func TestBuild_H1HoistedWhenMissing(t *testing.T) {
	b := newTestBuilder()
	html := `<h2>Section</h2><p>prose</p>`

	result, err := b.Build(html, buildPageURL, nil, "The Real Title")

	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(result.Enhanced(), "# The Real Title"))
	assert.Contains(t, result.SEOIssues(), IssueH1Missing)
}

func TestBuild_H1HoistedWhenNotFirst(t *testing.T) {
	b := newTestBuilder()
	html := `<p>intro prose</p><h1>Late Title</h1><p>more</p>`

	result, err := b.Build(html, buildPageURL, nil, "Late Title")

	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(result.Enhanced(), "# Late Title"))
	assert.Equal(t, 1, strings.Count(result.Enhanced(), "# Late Title"))
	assert.Contains(t, result.SEOIssues(), IssueH1NotFirst)
}

func TestBuild_MatchingFirstH1Untouched(t *testing.T) {
	b := newTestBuilder()
	html := `<h1>Title</h1><p>prose</p>`

	result, err := b.Build(html, buildPageURL, nil, "Title")

	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(result.Enhanced(), "# Title"))
	assert.Empty(t, result.SEOIssues())
}

func TestBuild_BoilerplateStripped(t *testing.T) {
	b := newTestBuilder()
	html := `<p>Home > Blog > Post</p>` +
		`<p>Posted on January 5 by Admin</p>` +
		`<p>real content</p>` +
		`<p>© 2026 Acme Inc.</p>`

	result, err := b.Build(html, buildPageURL, nil, "")

	require.Nil(t, err)
	assert.Contains(t, result.Enhanced(), "real content")
	assert.NotContains(t, result.Enhanced(), "Posted on")
	assert.NotContains(t, result.Enhanced(), "© 2026")
	assert.NotContains(t, result.Enhanced(), "Home > Blog")
}

func TestDerivePlain_Idempotent(t *testing.T) {
	enhanced := "<!-- STRUCT:TOC:START -->\n\n- one\n\n<!-- STRUCT:TOC:END -->\n\nprose"

	plain := DerivePlain(enhanced)

	assert.Equal(t, "- one\n\nprose", plain)
	assert.Equal(t, plain, DerivePlain(plain))
}
