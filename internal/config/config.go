package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

type FetchMode string

const (
	FetchModeStatic  FetchMode = "static"
	FetchModeBrowser FetchMode = "browser"
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Sitemap XML seeds. URL discovery happens only through these.
	seedSitemaps []url.URL

	//===============
	// Limits
	//===============
	// Maximum number of pages fetched in one run.
	maxPages int

	//===============
	// Fetch
	//===============
	// Default fetch mode for pages without a domain override.
	fetchMode FetchMode
	// Maximum time of a single fetch request.
	timeout time.Duration
	// User agent used in request headers.
	userAgent string
	// Requests per second across all workers. Zero disables throttling;
	// host-level politeness belongs to the fetch layer, not the core.
	requestsPerSecond float64

	//===============
	// Concurrency
	//===============
	// Number of crawl worker goroutines processing URLs concurrently.
	concurrency int

	//===============
	// Behavior
	//===============
	// Recrawl disables the existence skip; updates stay hash-gated.
	recrawl bool
	// Dry run performs sitemap intake only; no fetches, no writes.
	dryRun bool
	// Debug forces verbose logging.
	debug bool

	//===============
	// Persistence
	//===============
	// Path of the SQLite database file.
	dbPath string

	//===============
	// Thresholds
	//===============
	// Minimum word count for an extraction strategy to succeed.
	readabilityMinWords int
	// Pages with 2xx status, a known 404 phrase, and fewer words than this
	// are reclassified as soft 404s.
	soft404MaxWords int
	// Minimum share of anchor links for a region to classify as a TOC.
	tocAnchorRatio float64
	// Share of list items that must be links for a list to be dropped from
	// Markdown as navigation.
	navListLinkRatio float64
	// Minimum internal non-utility links for a primary nav candidate.
	primaryNavMinLinks int
	// Minimum links for a footer nav candidate.
	footerNavMinLinks int
	// Emit a progress record every N crawled pages.
	progressEvery int
}

const (
	DefaultMaxPages    = 10000
	DefaultConcurrency = 10
	DefaultTimeout     = 60 * time.Second
	DefaultUserAgent   = "sitemap-archiver/1.0 (+https://github.com/rohmanhakim/sitemap-archiver)"

	defaultReadabilityMinWords = 100
	defaultSoft404MaxWords     = 150
	defaultTocAnchorRatio      = 0.5
	defaultNavListLinkRatio    = 0.8
	defaultPrimaryNavMinLinks  = 3
	defaultFooterNavMinLinks   = 2
	defaultProgressEvery       = 10
)

func (c Config) SeedSitemaps() []url.URL    { return c.seedSitemaps }
func (c Config) MaxPages() int              { return c.maxPages }
func (c Config) FetchMode() FetchMode       { return c.fetchMode }
func (c Config) Timeout() time.Duration     { return c.timeout }
func (c Config) UserAgent() string          { return c.userAgent }
func (c Config) RequestsPerSecond() float64 { return c.requestsPerSecond }
func (c Config) Concurrency() int           { return c.concurrency }
func (c Config) Recrawl() bool              { return c.recrawl }
func (c Config) DryRun() bool               { return c.dryRun }
func (c Config) Debug() bool                { return c.debug }
func (c Config) DBPath() string             { return c.dbPath }
func (c Config) ReadabilityMinWords() int   { return c.readabilityMinWords }
func (c Config) Soft404MaxWords() int       { return c.soft404MaxWords }
func (c Config) TocAnchorRatio() float64    { return c.tocAnchorRatio }
func (c Config) NavListLinkRatio() float64  { return c.navListLinkRatio }
func (c Config) PrimaryNavMinLinks() int    { return c.primaryNavMinLinks }
func (c Config) FooterNavMinLinks() int     { return c.footerNavMinLinks }
func (c Config) ProgressEvery() int         { return c.progressEvery }

// Builder applies overrides on top of defaults and validates on Build.
type Builder struct {
	cfg Config
}

// WithDefault starts a builder from the compile-time defaults plus the
// mandatory sitemap seeds. Environment values (DB settings) are read here;
// CLI flags override through the With functions.
func WithDefault(seedSitemaps []url.URL) Builder {
	return Builder{
		cfg: Config{
			seedSitemaps:        seedSitemaps,
			maxPages:            DefaultMaxPages,
			fetchMode:           FetchModeStatic,
			timeout:             DefaultTimeout,
			userAgent:           DefaultUserAgent,
			concurrency:         DefaultConcurrency,
			dbPath:              dbPathFromEnv(),
			readabilityMinWords: defaultReadabilityMinWords,
			soft404MaxWords:     defaultSoft404MaxWords,
			tocAnchorRatio:      defaultTocAnchorRatio,
			navListLinkRatio:    defaultNavListLinkRatio,
			primaryNavMinLinks:  defaultPrimaryNavMinLinks,
			footerNavMinLinks:   defaultFooterNavMinLinks,
			progressEvery:       defaultProgressEvery,
		},
	}
}

// dbPathFromEnv resolves the database location. DB_PATH wins outright;
// otherwise DB_NAME (with optional DB_HOST acting as a directory for
// network filesystems) builds a local path; otherwise a file in the working
// directory.
func dbPathFromEnv() string {
	if p := os.Getenv("DB_PATH"); p != "" {
		return p
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = "sitemap-archiver"
	}
	if dir := os.Getenv("DB_HOST"); dir != "" && dirExists(dir) {
		return filepath.Join(dir, name+".db")
	}
	return name + ".db"
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func (b Builder) WithMaxPages(maxPages int) Builder {
	b.cfg.maxPages = maxPages
	return b
}

func (b Builder) WithFetchMode(mode FetchMode) Builder {
	b.cfg.fetchMode = mode
	return b
}

func (b Builder) WithTimeout(timeout time.Duration) Builder {
	b.cfg.timeout = timeout
	return b
}

func (b Builder) WithUserAgent(userAgent string) Builder {
	b.cfg.userAgent = userAgent
	return b
}

func (b Builder) WithRequestsPerSecond(rps float64) Builder {
	b.cfg.requestsPerSecond = rps
	return b
}

func (b Builder) WithConcurrency(concurrency int) Builder {
	b.cfg.concurrency = concurrency
	return b
}

func (b Builder) WithRecrawl(recrawl bool) Builder {
	b.cfg.recrawl = recrawl
	return b
}

func (b Builder) WithDryRun(dryRun bool) Builder {
	b.cfg.dryRun = dryRun
	return b
}

func (b Builder) WithDebug(debug bool) Builder {
	b.cfg.debug = debug
	return b
}

func (b Builder) WithDBPath(dbPath string) Builder {
	b.cfg.dbPath = dbPath
	return b
}

func (b Builder) Build() (Config, error) {
	if len(b.cfg.seedSitemaps) == 0 {
		return Config{}, fmt.Errorf("%w: at least one sitemap seed is required", ErrInvalidConfig)
	}
	for _, seed := range b.cfg.seedSitemaps {
		if seed.Host == "" {
			return Config{}, fmt.Errorf("%w: sitemap seed %q has no host", ErrInvalidConfig, seed.String())
		}
	}
	if b.cfg.maxPages <= 0 {
		return Config{}, fmt.Errorf("%w: max pages must be positive", ErrInvalidConfig)
	}
	if b.cfg.concurrency <= 0 {
		return Config{}, fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}
	if b.cfg.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if b.cfg.fetchMode != FetchModeStatic && b.cfg.fetchMode != FetchModeBrowser {
		return Config{}, fmt.Errorf("%w: unknown fetch mode %q", ErrInvalidConfig, b.cfg.fetchMode)
	}
	if b.cfg.dbPath == "" {
		return Config{}, fmt.Errorf("%w: database path cannot be empty", ErrInvalidConfig)
	}
	return b.cfg, nil
}

// ParseFetchMode validates a raw fetch-mode flag value.
func ParseFetchMode(raw string) (FetchMode, error) {
	switch FetchMode(raw) {
	case FetchModeStatic:
		return FetchModeStatic, nil
	case FetchModeBrowser:
		return FetchModeBrowser, nil
	default:
		return "", fmt.Errorf("%w: fetch mode must be static or browser, got %q", ErrInvalidConfig, raw)
	}
}
