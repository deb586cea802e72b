package cmd_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmd "github.com/rohmanhakim/sitemap-archiver/internal/cli"
	"github.com/rohmanhakim/sitemap-archiver/internal/config"
)

func defaultTestSeeds() []url.URL {
	return []url.URL{
		{Scheme: "https", Host: "example.com", Path: "/sitemap.xml"},
	}
}

func TestInitConfigNoFlags(t *testing.T) {
	cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError(defaultTestSeeds())
	require.NoError(t, err)

	assert.Equal(t, config.DefaultMaxPages, cfg.MaxPages())
	assert.Equal(t, config.DefaultConcurrency, cfg.Concurrency())
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout())
	assert.Equal(t, config.DefaultUserAgent, cfg.UserAgent())
	assert.Equal(t, config.FetchModeStatic, cfg.FetchMode())
	assert.False(t, cfg.Recrawl())
	assert.False(t, cfg.DryRun())
	require.Len(t, cfg.SeedSitemaps(), 1)
	assert.Equal(t, "example.com", cfg.SeedSitemaps()[0].Host)
}

func TestInitConfigWithEmptySeeds(t *testing.T) {
	cmd.ResetFlags()

	_, err := cmd.InitConfigWithError([]url.URL{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInitConfigFlagOverrides(t *testing.T) {
	cmd.ResetFlags()
	cmd.SetMaxPagesForTest(50)
	cmd.SetConcurrencyForTest(4)
	cmd.SetTimeoutForTest(10 * time.Second)
	cmd.SetUserAgentForTest("archiver-test/1.0")
	cmd.SetDBPathForTest("/tmp/archive-test.db")
	cmd.SetRecrawlForTest(true)
	cmd.SetDryRunForTest(true)
	cmd.SetDebugForTest(true)
	defer cmd.ResetFlags()

	cfg, err := cmd.InitConfigWithError(defaultTestSeeds())
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.MaxPages())
	assert.Equal(t, 4, cfg.Concurrency())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, "archiver-test/1.0", cfg.UserAgent())
	assert.Equal(t, "/tmp/archive-test.db", cfg.DBPath())
	assert.True(t, cfg.Recrawl())
	assert.True(t, cfg.DryRun())
	assert.True(t, cfg.Debug())
}

func TestInitConfigFetchMode(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		expectErr bool
		expected  config.FetchMode
	}{
		{name: "static", mode: "static", expected: config.FetchModeStatic},
		{name: "browser", mode: "browser", expected: config.FetchModeBrowser},
		{name: "unknown rejected", mode: "headless", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd.ResetFlags()
			cmd.SetFetchModeForTest(tt.mode)
			defer cmd.ResetFlags()

			cfg, err := cmd.InitConfigWithError(defaultTestSeeds())
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.FetchMode())
		})
	}
}
