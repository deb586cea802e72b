package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/sitemap-archiver/internal/config"
	"github.com/rohmanhakim/sitemap-archiver/internal/crawler"
	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/store"
)

var (
	sitemapURLs       []string
	maxPages          int
	fetchMode         string
	concurrency       int
	timeout           time.Duration
	userAgent         string
	requestsPerSecond float64
	dbPath            string
	recrawl           bool
	dryRun            bool
	debug             bool
)

// parseSitemapURLs converts a string slice of URLs to []url.URL
func parseSitemapURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("sitemap URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing sitemap URL %s: %w", urlStr, err)
		}
		if parsedURL.Host == "" {
			return nil, fmt.Errorf("sitemap URL %s has no host", urlStr)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sitemap-archiver",
	Short: "A sitemap-driven page archiver.",
	Long: `sitemap-archiver crawls every URL listed in one or more sitemap XML
seeds and persists a canonical, deduplicated archive of the pages: raw and
cleaned HTML, plain and structurally annotated Markdown, navigation
structure, and content hashes, all keyed by the terminal URL after
redirects.

Repeated runs are safe: pages are skipped when already archived (unless
--recrawl) and content columns only change when the content hash changes.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(sitemapURLs) == 0 {
			fmt.Fprintf(os.Stderr, "Error: --sitemap is required. Provide at least one sitemap XML URL.\n")
			cmd.Usage()
			os.Exit(1)
		}

		seeds, err := parseSitemapURLs(sitemapURLs)
		if err != nil {
			return err
		}

		cfg, err := InitConfigWithError(seeds)
		if err != nil {
			return err
		}

		return runCrawl(cfg)
	},
}

func runCrawl(cfg config.Config) error {
	recorder := metadata.NewRecorder(cfg.Debug())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DryRun() {
		// No writes in a dry run, so no store is opened.
		orchestrator := crawler.NewOrchestrator(cfg, &recorder, &recorder, nil)
		if dryErr := orchestrator.DryRun(ctx, os.Stdout); dryErr != nil {
			return fmt.Errorf("dry run failed: %s", dryErr.Error())
		}
		return nil
	}

	s, storeErr := store.Open(cfg.DBPath())
	if storeErr != nil {
		return fmt.Errorf("opening database %s: %s", cfg.DBPath(), storeErr.Error())
	}

	orchestrator := crawler.NewOrchestrator(cfg, &recorder, &recorder, s)
	summary, runErr := orchestrator.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("crawl failed: %s", runErr.Error())
	}

	summary.Print(os.Stdout)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&sitemapURLs, "sitemap", []string{}, "sitemap XML URL to crawl (can be repeated)")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages fetched in one run")
	rootCmd.PersistentFlags().StringVar(&fetchMode, "fetch-mode", "", "fetch mode: static or browser")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent crawl workers")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for a single page fetch")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().Float64Var(&requestsPerSecond, "requests-per-second", 0, "request rate across all workers (0 disables throttling)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "path of the SQLite database file (overrides DB_PATH)")
	rootCmd.PersistentFlags().BoolVar(&recrawl, "recrawl", false, "refetch pages that already exist (updates stay hash-gated)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "discover and print URLs without fetching pages or writing")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "force verbose logging")
}

// InitConfig builds the effective configuration from defaults, environment,
// and flags. seedSitemaps is mandatory and must contain at least one URL.
func InitConfig(seedSitemaps []url.URL) config.Config {
	cfg, err := InitConfigWithError(seedSitemaps)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective configuration, returning any
// errors. This makes it easier to test error cases.
func InitConfigWithError(seedSitemaps []url.URL) (config.Config, error) {
	if len(seedSitemaps) == 0 {
		return config.Config{}, fmt.Errorf("%w: seedSitemaps cannot be empty", config.ErrInvalidConfig)
	}

	configBuilder := config.WithDefault(seedSitemaps)

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if fetchMode != "" {
		mode, err := config.ParseFetchMode(fetchMode)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithFetchMode(mode)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if requestsPerSecond > 0 {
		configBuilder = configBuilder.WithRequestsPerSecond(requestsPerSecond)
	}

	if dbPath != "" {
		configBuilder = configBuilder.WithDBPath(dbPath)
	}

	if recrawl {
		configBuilder = configBuilder.WithRecrawl(recrawl)
	}

	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}

	if debug {
		configBuilder = configBuilder.WithDebug(debug)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	sitemapURLs = []string{}
	maxPages = 0
	fetchMode = ""
	concurrency = 0
	timeout = 0
	userAgent = ""
	requestsPerSecond = 0
	dbPath = ""
	recrawl = false
	dryRun = false
	debug = false
}

// Test helper functions to set flag values from tests

func SetSitemapURLsForTest(urls []string) {
	sitemapURLs = urls
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetFetchModeForTest(mode string) {
	fetchMode = mode
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetTimeoutForTest(d time.Duration) {
	timeout = d
}

func SetUserAgentForTest(ua string) {
	userAgent = ua
}

func SetDBPathForTest(path string) {
	dbPath = path
}

func SetRecrawlForTest(r bool) {
	recrawl = r
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetDebugForTest(d bool) {
	debug = d
}
