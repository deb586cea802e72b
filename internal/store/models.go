package store

import (
	"encoding/json"
	"time"

	"github.com/rohmanhakim/sitemap-archiver/internal/nav"
)

// Crawl statuses persisted on a Page.
const (
	CrawlStatusOK            = "OK"
	CrawlStatusRedirectAlias = "REDIRECT_ALIAS"
	CrawlStatusNotFound      = "NOT_FOUND"
	CrawlStatusSoft404       = "SOFT_404"
	CrawlStatusError         = "ERROR"
)

// Run statuses persisted on a CrawlRun.
const (
	RunStatusRunning  = "running"
	RunStatusFinished = "finished"
	RunStatusAborted  = "aborted"
)

// Page is the canonical page record, uniquely keyed by FinalURL.
// Nullable columns are pointer-typed so the hash-gated upsert can
// distinguish "no value this run" from an explicit overwrite.
type Page struct {
	ID uint `gorm:"primaryKey"`

	FinalURL    string `gorm:"uniqueIndex;not null"`
	StatusCode  int
	CrawlStatus string `gorm:"not null;default:'OK'"`

	RequestedURLOriginal string
	RedirectChain        string `gorm:"type:text"` // JSON array of canonical URLs
	FetchMode            string
	RunID                string  `gorm:"index"`
	SitemapTypeHint      *string `gorm:"index"`

	HTMLContent      *string `gorm:"type:text"`
	CleanHTML        *string `gorm:"type:text"`
	Markdown         *string `gorm:"type:text"`
	MarkdownEnhanced *string `gorm:"type:text"`
	ContentHash      *string `gorm:"index"`
	RawHash          *string

	Title            *string
	H1               *string
	MetaDescription  *string
	Language         *string
	WordCount        *int
	NavStructure     *string `gorm:"type:text"` // JSON nav.Structure
	StructuralStats  *string `gorm:"type:text"` // JSON counter map
	ExtractionMethod *string
	JunkScore        *float64

	LastCrawledAt time.Time
	LastError     *string

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

// GetRedirectChainArray deserializes the RedirectChain JSON.
func (p *Page) GetRedirectChainArray() []string {
	return decodeStringArray(p.RedirectChain)
}

// SetRedirectChainArray serializes urls into the RedirectChain column.
func (p *Page) SetRedirectChainArray(urls []string) error {
	encoded, err := encodeStringArray(urls)
	if err != nil {
		return err
	}
	p.RedirectChain = encoded
	return nil
}

// GetNavStructure deserializes the NavStructure JSON, or nil.
func (p *Page) GetNavStructure() *nav.Structure {
	if p.NavStructure == nil || *p.NavStructure == "" {
		return nil
	}
	var structure nav.Structure
	if err := json.Unmarshal([]byte(*p.NavStructure), &structure); err != nil {
		return nil
	}
	return &structure
}

// SetNavStructure serializes structure into the NavStructure column.
func (p *Page) SetNavStructure(structure nav.Structure) error {
	data, err := json.Marshal(structure)
	if err != nil {
		return err
	}
	encoded := string(data)
	p.NavStructure = &encoded
	return nil
}

// GetStructuralStats deserializes the StructuralStats JSON, or nil.
func (p *Page) GetStructuralStats() map[string]int {
	if p.StructuralStats == nil || *p.StructuralStats == "" {
		return nil
	}
	var stats map[string]int
	if err := json.Unmarshal([]byte(*p.StructuralStats), &stats); err != nil {
		return nil
	}
	return stats
}

// SetStructuralStats serializes stats into the StructuralStats column.
func (p *Page) SetStructuralStats(stats map[string]int) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	encoded := string(data)
	p.StructuralStats = &encoded
	return nil
}

// UrlAlias records one requested-to-final URL mapping. Unique by
// RequestedURL; always written, even when the page itself is skipped.
type UrlAlias struct {
	ID uint `gorm:"primaryKey"`

	RequestedURL  string `gorm:"uniqueIndex;not null"`
	FinalURL      string `gorm:"index;not null"`
	StatusCode    int
	RedirectChain string `gorm:"type:text"` // JSON array
	RunID         string

	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

func (a *UrlAlias) GetRedirectChainArray() []string {
	return decodeStringArray(a.RedirectChain)
}

func (a *UrlAlias) SetRedirectChainArray(urls []string) error {
	encoded, err := encodeStringArray(urls)
	if err != nil {
		return err
	}
	a.RedirectChain = encoded
	return nil
}

// CrawlRun is one orchestrator invocation with its final counters.
type CrawlRun struct {
	ID uint `gorm:"primaryKey"`

	RunID        string `gorm:"uniqueIndex;not null"`
	SeedSitemaps string `gorm:"type:text"` // JSON array
	Status       string `gorm:"not null;default:'running'"`

	Discovered int
	Crawled    int
	Skipped    int
	Redirects  int
	Errors     int

	StartedAt  time.Time
	FinishedAt *time.Time
}

func (r *CrawlRun) GetSeedSitemapsArray() []string {
	return decodeStringArray(r.SeedSitemaps)
}

func (r *CrawlRun) SetSeedSitemapsArray(urls []string) error {
	encoded, err := encodeStringArray(urls)
	if err != nil {
		return err
	}
	r.SeedSitemaps = encoded
	return nil
}

// DomainOverride holds per-host selector configuration. Read-only
// during a crawl; edited out of band.
type DomainOverride struct {
	ID uint `gorm:"primaryKey"`

	Domain           string `gorm:"uniqueIndex;not null"`
	Enabled          bool   `gorm:"not null"`
	ContentSelectors string `gorm:"type:text"` // JSON array
	RemoveSelectors  string `gorm:"type:text"` // JSON array
	ForceFetchMode   string
	Notes            string

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (d *DomainOverride) GetContentSelectorsArray() []string {
	return decodeStringArray(d.ContentSelectors)
}

func (d *DomainOverride) SetContentSelectorsArray(selectors []string) error {
	encoded, err := encodeStringArray(selectors)
	if err != nil {
		return err
	}
	d.ContentSelectors = encoded
	return nil
}

func (d *DomainOverride) GetRemoveSelectorsArray() []string {
	return decodeStringArray(d.RemoveSelectors)
}

func (d *DomainOverride) SetRemoveSelectorsArray(selectors []string) error {
	encoded, err := encodeStringArray(selectors)
	if err != nil {
		return err
	}
	d.RemoveSelectors = encoded
	return nil
}

func decodeStringArray(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func encodeStringArray(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
