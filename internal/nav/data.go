package nav

// Persisted as the Page's nav_structure JSON column; field names are
// part of the stored format.

// Link types for NavItem and ContentLink labels.
const (
	LinkTypeText  = "text"
	LinkTypeImage = "image"
	LinkTypeIcon  = "icon"
)

// Content link source types. These mirror structural element types,
// plus contextual_body for links in plain prose.
const (
	SourceContextualBody = "contextual_body"
	SourceFAQModule      = "faq_module"
	SourceTOCOrJump      = "toc_or_jump"
	SourceBreadcrumb     = "breadcrumb"
	SourceTemplateCTA    = "template_cta"
	SourceTestimonial    = "testimonial"
	SourceAuthorBio      = "author_bio"
	SourceRelatedPosts   = "related_posts"
)

// NavItem is one link in a navigation cluster. Order is dense and
// zero-based within the cluster at a given depth; depth never
// exceeds 3.
type NavItem struct {
	URL          string   `json:"url"`
	Label        string   `json:"label"`
	Depth        int      `json:"depth"`
	Order        int      `json:"order"`
	ParentLabels []string `json:"parent_labels,omitempty"`
	IsExternal   bool     `json:"is_external"`
	LinkType     string   `json:"link_type"`
}

type BreadcrumbItem struct {
	Label    string `json:"label"`
	URL      string `json:"url,omitempty"`
	Position int    `json:"position"`
}

// ContentLink is one link found inside the main content region,
// classified by the structural element containing it.
type ContentLink struct {
	URL             string `json:"url"`
	Label           string `json:"label"`
	SourceType      string `json:"source_type"`
	NearestHeading  string `json:"nearest_heading,omitempty"`
	BodyPositionPct int    `json:"body_position_pct"`
	IsExternal      bool   `json:"is_external"`
}

type Meta struct {
	SelectorsMatched []string `json:"selectors_matched"`
	ClusterCount     int      `json:"cluster_count"`
	HasMegaMenu      bool     `json:"has_mega_menu"`
	ExtractionTimeMs int64    `json:"extraction_time_ms"`
	Fingerprint      string   `json:"fingerprint,omitempty"`
}

// Structure is the complete navigation extraction for one page.
type Structure struct {
	PrimaryNav       []NavItem        `json:"primary_nav"`
	FooterNav        []NavItem        `json:"footer_nav"`
	UtilityHeader    []NavItem        `json:"utility_header"`
	LanguageSwitcher []NavItem        `json:"language_switcher"`
	Breadcrumb       []BreadcrumbItem `json:"breadcrumb"`
	ContentLinks     []ContentLink    `json:"content_links"`
	Meta             Meta             `json:"meta"`
}
