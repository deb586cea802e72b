package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// CreateRun records the start of a crawl run.
func (s *Store) CreateRun(runID string, seedSitemaps []string) *StoreError {
	run := CrawlRun{
		RunID:     runID,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}
	if err := run.SetSeedSitemapsArray(seedSitemaps); err != nil {
		return queryError(err)
	}
	if err := s.db.Create(&run).Error; err != nil {
		return queryError(err)
	}
	return nil
}

// RunStats is the counter snapshot written back onto a run row.
type RunStats struct {
	Discovered int
	Crawled    int
	Skipped    int
	Redirects  int
	Errors     int
}

// UpdateRunStats overwrites the run's counters.
func (s *Store) UpdateRunStats(runID string, stats RunStats) *StoreError {
	err := s.db.Model(&CrawlRun{}).Where("run_id = ?", runID).Updates(map[string]interface{}{
		"discovered": stats.Discovered,
		"crawled":    stats.Crawled,
		"skipped":    stats.Skipped,
		"redirects":  stats.Redirects,
		"errors":     stats.Errors,
	}).Error
	if err != nil {
		return queryError(err)
	}
	return nil
}

// FinishRun marks the run terminal with its final counters.
func (s *Store) FinishRun(runID string, status string, stats RunStats) *StoreError {
	now := time.Now()
	err := s.db.Model(&CrawlRun{}).Where("run_id = ?", runID).Updates(map[string]interface{}{
		"status":      status,
		"finished_at": &now,
		"discovered":  stats.Discovered,
		"crawled":     stats.Crawled,
		"skipped":     stats.Skipped,
		"redirects":   stats.Redirects,
		"errors":      stats.Errors,
	}).Error
	if err != nil {
		return queryError(err)
	}
	return nil
}

// GetRun returns the run row, or nil when absent.
func (s *Store) GetRun(runID string) (*CrawlRun, *StoreError) {
	var run CrawlRun
	err := s.db.Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(err)
	}
	return &run, nil
}
