package sitemap

import "regexp"

// Entry is one discovered URL, annotated with its origin sitemap and the
// type hint derived from that sitemap's filename. Entries are deduplicated
// by canonical URL; the first-seen source and hint win, and every raw
// form sharing the canonical is retained for alias records.
type Entry struct {
	raws      []string
	canonical string
	source    string
	typeHint  string
}

func (e Entry) Raw() string       { return e.raws[0] }
func (e Entry) Raws() []string    { return e.raws }
func (e Entry) Canonical() string { return e.canonical }
func (e Entry) Source() string    { return e.source }
func (e Entry) TypeHint() string  { return e.typeHint }

// NewEntryForTest creates an Entry for testing purposes.
func NewEntryForTest(raw, canonical, source, typeHint string) Entry {
	return Entry{raws: []string{raw}, canonical: canonical, source: source, typeHint: typeHint}
}

// Type hints recognized by downstream consumers.
const (
	HintPost       = "post"
	HintPage       = "page"
	HintProduct    = "product"
	HintEvent      = "event"
	HintPortfolio  = "portfolio"
	HintPagination = "pagination"
)

type hintRule struct {
	pattern *regexp.Regexp
	hint    string
}

// hintRules maps sitemap filenames to type hints. Rules are tried in
// order; the first match wins. No match leaves the hint empty.
var hintRules = []hintRule{
	{pattern: regexp.MustCompile(`^post-sitemap`), hint: HintPost},
	{pattern: regexp.MustCompile(`^page-sitemap`), hint: HintPage},
	{pattern: regexp.MustCompile(`product`), hint: HintProduct},
	{pattern: regexp.MustCompile(`event`), hint: HintEvent},
	{pattern: regexp.MustCompile(`portfolio`), hint: HintPortfolio},
	{pattern: regexp.MustCompile(`category|tag|author`), hint: HintPagination},
	{pattern: regexp.MustCompile(`blog|news|article`), hint: HintPost},
	{pattern: regexp.MustCompile(`page`), hint: HintPage},
}

// HintForFilename derives a type hint from the last path segment of a
// sitemap URL.
func HintForFilename(filename string) string {
	for _, rule := range hintRules {
		if rule.pattern.MatchString(filename) {
			return rule.hint
		}
	}
	return ""
}
