package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAlias_FirstSeenPreserved(t *testing.T) {
	s := newTestStore(t)
	firstSeen := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	first := &UrlAlias{
		RequestedURL: "http://example.com/old",
		FinalURL:     "https://example.com/new",
		StatusCode:   301,
		RunID:        "run-1",
		FirstSeenAt:  firstSeen,
		LastSeenAt:   firstSeen,
	}
	require.Nil(t, s.UpsertAlias(first))

	laterSeen := firstSeen.Add(48 * time.Hour)
	second := &UrlAlias{
		RequestedURL: "http://example.com/old",
		FinalURL:     "https://example.com/new",
		StatusCode:   301,
		RunID:        "run-2",
		FirstSeenAt:  laterSeen,
		LastSeenAt:   laterSeen,
	}
	require.Nil(t, s.UpsertAlias(second))

	alias, err := s.GetAliasByRequestedURL("http://example.com/old")
	require.Nil(t, err)
	require.NotNil(t, alias)
	assert.Equal(t, firstSeen.Unix(), alias.FirstSeenAt.Unix())
	assert.Equal(t, laterSeen.Unix(), alias.LastSeenAt.Unix())
	assert.Equal(t, "run-2", alias.RunID)
}

func TestListAliasesForFinalURL(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	for _, requested := range []string{"http://example.com/a", "https://example.com/a/"} {
		require.Nil(t, s.UpsertAlias(&UrlAlias{
			RequestedURL: requested,
			FinalURL:     "https://example.com/a",
			StatusCode:   200,
			RunID:        "run-1",
			FirstSeenAt:  now,
			LastSeenAt:   now,
		}))
	}

	aliases, err := s.ListAliasesForFinalURL("https://example.com/a")
	require.Nil(t, err)
	assert.Len(t, aliases, 2)
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.Nil(t, s.CreateRun("run-1", []string{"https://example.com/sitemap.xml"}))

	run, err := s.GetRun("run-1")
	require.Nil(t, err)
	require.NotNil(t, run)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.FinishedAt)
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, run.GetSeedSitemapsArray())

	stats := RunStats{Discovered: 10, Crawled: 8, Skipped: 1, Redirects: 2, Errors: 1}
	require.Nil(t, s.FinishRun("run-1", RunStatusFinished, stats))

	run, err = s.GetRun("run-1")
	require.Nil(t, err)
	assert.Equal(t, RunStatusFinished, run.Status)
	assert.NotNil(t, run.FinishedAt)
	assert.Equal(t, 8, run.Crawled)
	assert.Equal(t, 1, run.Errors)
}

func TestDomainOverrideRoundTrip(t *testing.T) {
	s := newTestStore(t)

	override := &DomainOverride{Domain: "example.com", Enabled: true, ForceFetchMode: "browser"}
	require.NoError(t, override.SetContentSelectorsArray([]string{".article-body"}))
	require.NoError(t, override.SetRemoveSelectorsArray([]string{".newsletter-popup"}))
	require.Nil(t, s.UpsertDomainOverride(override))

	stored, err := s.GetDomainOverride("example.com")
	require.Nil(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Enabled)
	assert.Equal(t, "browser", stored.ForceFetchMode)
	assert.Equal(t, []string{".article-body"}, stored.GetContentSelectorsArray())
	assert.Equal(t, []string{".newsletter-popup"}, stored.GetRemoveSelectorsArray())

	// Upserting the same domain with enabled cleared turns the row off.
	disabled := &DomainOverride{Domain: "example.com", Enabled: false}
	require.Nil(t, s.UpsertDomainOverride(disabled))

	stored, err = s.GetDomainOverride("example.com")
	require.Nil(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Enabled)

	missing, err := s.GetDomainOverride("unknown.example")
	require.Nil(t, err)
	assert.Nil(t, missing)
}
