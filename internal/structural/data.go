package structural

// Element types, keyed the way they are persisted in structural_stats
// and referenced by content-link classification.
const (
	TypeFAQ          = "faq_module"
	TypeTOC          = "toc_or_jump"
	TypeBreadcrumb   = "breadcrumb"
	TypeTemplateCTA  = "template_cta"
	TypeAccordion    = "accordion"
	TypeTestimonial  = "testimonial"
	TypeAuthorBio    = "author_bio"
	TypeRelatedPosts = "related_posts"
)

// statKeys maps element types to their structural_stats counter names.
var statKeys = map[string]string{
	TypeFAQ:          "faq_modules",
	TypeTOC:          "toc_sections",
	TypeBreadcrumb:   "breadcrumbs",
	TypeTemplateCTA:  "template_ctas",
	TypeAccordion:    "accordions",
	TypeTestimonial:  "testimonials",
	TypeAuthorBio:    "author_bios",
	TypeRelatedPosts: "related_posts",
}

// Metadata is the per-type payload attached to an Element. Only FAQ and
// TOC elements carry one today.
type Metadata interface {
	structuralMetadata()
}

// QA is one question/answer pair harvested from a FAQ element. Answer
// is empty for selector-detected FAQs, where answers stay in the DOM.
type QA struct {
	Question string
	Answer   string
}

// FAQMeta describes a FAQ element. HasSchema flags the JSON-LD path.
type FAQMeta struct {
	HasSchema bool
	Questions []QA
}

func (FAQMeta) structuralMetadata() {}

// TOCMeta describes a table-of-contents element.
type TOCMeta struct {
	AnchorRatio float64
	LinkCount   int
}

func (TOCMeta) structuralMetadata() {}

// Element is one detected structural region. Start and End are byte
// offsets into the raw HTML string the detector was given.
type Element struct {
	typ      string
	start    int
	end      int
	selector string
	meta     Metadata
}

func (e Element) Type() string     { return e.typ }
func (e Element) Start() int       { return e.start }
func (e Element) End() int         { return e.end }
func (e Element) Selector() string { return e.selector }
func (e Element) Meta() Metadata   { return e.meta }

// NewElementForTest creates an Element for testing purposes.
func NewElementForTest(typ string, start, end int, selector string, meta Metadata) Element {
	return Element{typ: typ, start: start, end: end, selector: selector, meta: meta}
}

// Stats aggregates element counts under their persisted counter names.
// Every counter is present, zero-valued when no element of the type
// was found.
func Stats(elements []Element) map[string]int {
	stats := make(map[string]int, len(statKeys))
	for _, key := range statKeys {
		stats[key] = 0
	}
	for _, element := range elements {
		stats[statKeys[element.typ]]++
	}
	return stats
}

// At returns the innermost element containing offset, or nil. Linear
// scan; element lists are small.
func At(offset int, elements []Element) *Element {
	var innermost *Element
	span := -1
	for i := range elements {
		element := elements[i]
		if offset < element.start || offset >= element.end {
			continue
		}
		width := element.end - element.start
		if span == -1 || width < span {
			span = width
			innermost = &elements[i]
		}
	}
	return innermost
}
