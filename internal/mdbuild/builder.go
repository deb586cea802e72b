package mdbuild

import (
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/structural"
	"github.com/rohmanhakim/sitemap-archiver/pkg/failure"
)

/*
Responsibilities
- One conversion pass producing two Markdown products: enhanced with
  structural markers and plain with markers stripped
- Link absolutization, base64 image sanitizing, navigation-list
  suppression, boilerplate strip, heading normalization
- H1 hoisting with SEO issue reporting

The plain form is derived from the enhanced form by marker stripping
and newline collapse, so the two can never drift apart.
*/

type Builder struct {
	metadataSink     metadata.MetadataSink
	converter        *converter.Converter
	navListLinkRatio float64
}

func NewBuilder(metadataSink metadata.MetadataSink, navListLinkRatio float64) Builder {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return Builder{
		metadataSink:     metadataSink,
		converter:        conv,
		navListLinkRatio: navListLinkRatio,
	}
}

// Build converts clean HTML into the page's Markdown products.
// elements are the structural regions detected on the raw HTML; only
// their JSON-LD FAQ payloads matter here, since schema scripts never
// survive cleaning and must be re-emitted from parsed data.
func (b *Builder) Build(
	cleanHTML string,
	pageURL string,
	elements []structural.Element,
	h1 string,
) (Result, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleanHTML))
	if err != nil {
		buildErr := &BuildError{Message: err.Error(), Cause: ErrCauseParseFailure}
		b.recordError(buildErr, pageURL)
		return Result{}, buildErr
	}

	insertSentinels(doc)
	prepareDOM(doc, pageURL, b.navListLinkRatio)

	body := doc.Find("body").First()
	prepared, htmlErr := body.Html()
	if htmlErr != nil {
		buildErr := &BuildError{Message: htmlErr.Error(), Cause: ErrCauseParseFailure}
		b.recordError(buildErr, pageURL)
		return Result{}, buildErr
	}

	markdown, convErr := b.converter.ConvertString(prepared)
	if convErr != nil {
		buildErr := &BuildError{Message: convErr.Error(), Cause: ErrCauseConversionFailure}
		b.recordError(buildErr, pageURL)
		return Result{}, buildErr
	}

	enhanced := replaceSentinels(markdown)
	enhanced = appendSchemaFAQs(enhanced, elements)
	enhanced = stripBoilerplate(enhanced)

	// Hoisting can prepend an h1 above a document whose first heading is
	// deeper, so normalization must run after it.
	enhanced, seoIssues := hoistH1(enhanced, h1)
	enhanced = normalizeHeadings(enhanced)
	enhanced = collapseWhitespace(enhanced)

	return Result{
		enhanced:  enhanced,
		plain:     DerivePlain(enhanced),
		seoIssues: seoIssues,
	}, nil
}

// DerivePlain strips structural markers and collapses the leftover
// blank runs. Applying it to enhanced Markdown always reproduces the
// stored plain form.
func DerivePlain(enhanced string) string {
	return collapseWhitespace(StripMarkersPattern.ReplaceAllString(enhanced, ""))
}

func appendSchemaFAQs(markdown string, elements []structural.Element) string {
	var blocks []string
	for _, element := range elements {
		meta, ok := element.Meta().(structural.FAQMeta)
		if !ok || !meta.HasSchema {
			continue
		}
		if block := schemaFAQBlock(meta); block != "" {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		return markdown
	}
	return markdown + "\n\n" + strings.Join(blocks, "\n\n")
}

func (b *Builder) recordError(err *BuildError, pageURL string) {
	b.metadataSink.RecordError(
		time.Now(),
		"mdbuild",
		"Builder.Build",
		mapBuildErrorToMetadataCause(err),
		err.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, pageURL),
		},
	)
}
