package pagemeta

// Meta holds the head-derived description of a page. Absent values are
// empty strings; nothing here is required for the crawl to proceed.
type Meta struct {
	title           string
	h1              string
	metaDescription string
	canonical       string
	ogImage         string
	language        string
	hasMultipleH1   bool
}

func (m Meta) Title() string           { return m.title }
func (m Meta) H1() string              { return m.h1 }
func (m Meta) MetaDescription() string { return m.metaDescription }
func (m Meta) Canonical() string       { return m.canonical }
func (m Meta) OgImage() string         { return m.ogImage }
func (m Meta) Language() string        { return m.language }
func (m Meta) HasMultipleH1() bool     { return m.hasMultipleH1 }

// NewMetaForTest creates a Meta for testing purposes.
func NewMetaForTest(
	title string,
	h1 string,
	metaDescription string,
	canonical string,
	ogImage string,
	language string,
	hasMultipleH1 bool,
) Meta {
	return Meta{
		title:           title,
		h1:              h1,
		metaDescription: metaDescription,
		canonical:       canonical,
		ogImage:         ogImage,
		language:        language,
		hasMultipleH1:   hasMultipleH1,
	}
}
