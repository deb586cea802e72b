package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contentGateExpr preserves a content column unless the incoming row
// carries a content hash that differs from the stored one.
func contentGateExpr(column string) clause.Expr {
	return gorm.Expr(
		"CASE WHEN excluded.content_hash IS NOT NULL" +
			" AND (pages.content_hash IS NULL OR pages.content_hash != excluded.content_hash)" +
			" THEN excluded." + column + " ELSE pages." + column + " END",
	)
}

func coalesceExpr(column string) clause.Expr {
	return gorm.Expr("COALESCE(excluded." + column + ", pages." + column + ")")
}

func newValueExpr(column string) clause.Expr {
	return gorm.Expr("excluded." + column)
}

// UpsertPage inserts or updates the canonical page row keyed by
// final_url:
//   - status, redirect chain, fetch mode, run id, last error, and
//     last_crawled_at always come from the new row
//   - html_content and clean_html change only behind the content-hash
//     gate, so unchanged pages stay byte-identical across runs
//   - markdown products update whenever the new value is non-null
//   - metadata columns keep the old value when the new one is null
func (s *Store) UpsertPage(page *Page) *StoreError {
	assignments := map[string]interface{}{
		"status_code":            newValueExpr("status_code"),
		"crawl_status":           newValueExpr("crawl_status"),
		"requested_url_original": newValueExpr("requested_url_original"),
		"redirect_chain":         newValueExpr("redirect_chain"),
		"fetch_mode":             newValueExpr("fetch_mode"),
		"run_id":                 newValueExpr("run_id"),
		"last_error":             newValueExpr("last_error"),
		"last_crawled_at":        newValueExpr("last_crawled_at"),

		"html_content": contentGateExpr("html_content"),
		"clean_html":   contentGateExpr("clean_html"),

		"markdown":          coalesceExpr("markdown"),
		"markdown_enhanced": coalesceExpr("markdown_enhanced"),

		"title":             coalesceExpr("title"),
		"h1":                coalesceExpr("h1"),
		"meta_description":  coalesceExpr("meta_description"),
		"language":          coalesceExpr("language"),
		"word_count":        coalesceExpr("word_count"),
		"extraction_method": coalesceExpr("extraction_method"),
		"junk_score":        coalesceExpr("junk_score"),
		"content_hash":      coalesceExpr("content_hash"),
		"raw_hash":          coalesceExpr("raw_hash"),
		"sitemap_type_hint": coalesceExpr("sitemap_type_hint"),
		"nav_structure":     coalesceExpr("nav_structure"),
		"structural_stats":  coalesceExpr("structural_stats"),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "final_url"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(page).Error
	if err != nil {
		return queryError(err)
	}
	return nil
}

// GetPageByFinalURL returns the page row, or nil when absent.
func (s *Store) GetPageByFinalURL(finalURL string) (*Page, *StoreError) {
	var page Page
	err := s.db.Where("final_url = ?", finalURL).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(err)
	}
	return &page, nil
}

// PageExists reports whether a page row exists for finalURL.
func (s *Store) PageExists(finalURL string) (bool, *StoreError) {
	var count int64
	err := s.db.Model(&Page{}).Where("final_url = ?", finalURL).Count(&count).Error
	if err != nil {
		return false, queryError(err)
	}
	return count > 0, nil
}

// CountPages returns the total number of page rows.
func (s *Store) CountPages() (int64, *StoreError) {
	var count int64
	if err := s.db.Model(&Page{}).Count(&count).Error; err != nil {
		return 0, queryError(err)
	}
	return count, nil
}

// FindPageByContentHash returns the earliest page row sharing hash, or
// nil. Used for cross-URL duplicate content reporting.
func (s *Store) FindPageByContentHash(hash string) (*Page, *StoreError) {
	var page Page
	err := s.db.Where("content_hash = ?", hash).Order("id asc").First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(err)
	}
	return &page, nil
}
