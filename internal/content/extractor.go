package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

/*
Responsibilities
- Multi-strategy main-content isolation over the cleaned DOM
- Word-count success gate per strategy
- Junk score (link-text density) for downstream quality filtering

Cascade order: domain override selectors, readability heuristic,
semantic tags, CMS patterns, then the cleaned body as fallback. The
fallback never fails.
*/

var semanticSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"[itemprop=articleBody]",
}

var cmsSelectors = []string{
	".entry-content",
	".post-content",
	".article-content",
	".content-area",
	"#content",
	".main-content",
	"[itemprop=articleBody]",
}

// readabilityCandidates are the block containers scored by the
// readability heuristic. A candidate needs at least one paragraph.
var readabilityCandidates = "div, section, article, main"

type Extractor struct {
	minWords int
}

// NewExtractor builds an Extractor. minWords is the success gate: a
// strategy whose text body holds fewer words does not succeed.
func NewExtractor(minWords int) Extractor {
	return Extractor{minWords: minWords}
}

// Extract runs the cascade over cleanedBody (the cleaner's output) and
// returns the first successful strategy's result, or the fallback.
// overrideSelectors come from per-domain configuration.
func (e *Extractor) Extract(cleanedBody string, overrideSelectors []string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleanedBody))
	if err != nil {
		return e.fallbackResult(cleanedBody)
	}

	for _, selector := range overrideSelectors {
		if result, ok := e.try(doc.Find(selector).First(), MethodDomainOverride); ok {
			return result
		}
	}

	if candidate := e.bestReadabilityCandidate(doc); candidate != nil {
		if result, ok := e.try(candidate, MethodReadability); ok {
			return result
		}
	}

	for _, selector := range semanticSelectors {
		if result, ok := e.try(doc.Find(selector).First(), MethodSemantic); ok {
			return result
		}
	}

	for _, selector := range cmsSelectors {
		if result, ok := e.try(doc.Find(selector).First(), MethodCMSPattern); ok {
			return result
		}
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return e.fallbackResult(cleanedBody)
	}
	bodyHTML, htmlErr := body.Html()
	if htmlErr != nil {
		return e.fallbackResult(cleanedBody)
	}
	return Result{
		cleanHTML: strings.TrimSpace(bodyHTML),
		wordCount: CountWords(body.Text()),
		method:    MethodFallback,
		junkScore: junkScore(body),
	}
}

// try evaluates one candidate selection against the word-count gate.
func (e *Extractor) try(selection *goquery.Selection, method string) (Result, bool) {
	if selection == nil || selection.Length() == 0 {
		return Result{}, false
	}
	innerHTML, err := selection.Html()
	if err != nil || strings.TrimSpace(innerHTML) == "" {
		return Result{}, false
	}
	words := CountWords(selection.Text())
	if words < e.minWords {
		return Result{}, false
	}
	return Result{
		cleanHTML: strings.TrimSpace(innerHTML),
		wordCount: words,
		method:    method,
		junkScore: junkScore(selection),
	}, true
}

// bestReadabilityCandidate scores block containers by text length
// weighted by link density and returns the highest scorer, or nil.
func (e *Extractor) bestReadabilityCandidate(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestScore := 0.0

	doc.Find(readabilityCandidates).Each(func(_ int, candidate *goquery.Selection) {
		if candidate.Find("p").Length() == 0 {
			return
		}
		textLen := float64(len(strings.TrimSpace(candidate.Text())))
		if textLen == 0 {
			return
		}
		score := textLen * (1.0 - linkDensity(candidate))
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	})
	return best
}

func (e *Extractor) fallbackResult(cleanedBody string) Result {
	return Result{
		cleanHTML: strings.TrimSpace(cleanedBody),
		wordCount: 0,
		method:    MethodFallback,
		junkScore: 0,
	}
}

// CountWords is a whitespace-split token count of the text body.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

func linkDensity(selection *goquery.Selection) float64 {
	total := len(strings.TrimSpace(selection.Text()))
	if total == 0 {
		return 0
	}
	linked := 0
	selection.Find("a").Each(func(_ int, anchor *goquery.Selection) {
		linked += len(strings.TrimSpace(anchor.Text()))
	})
	density := float64(linked) / float64(total)
	if density > 1 {
		density = 1
	}
	return density
}

// junkScore is the ratio of characters inside anchors to total text
// characters, clamped to [0,1].
func junkScore(selection *goquery.Selection) float64 {
	return linkDensity(selection)
}
