package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertAlias inserts or updates the alias row keyed by requested_url.
// first_seen_at is preserved on conflict; last_seen_at always advances.
func (s *Store) UpsertAlias(alias *UrlAlias) *StoreError {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "requested_url"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"final_url":      newValueExpr("final_url"),
			"status_code":    newValueExpr("status_code"),
			"redirect_chain": newValueExpr("redirect_chain"),
			"run_id":         newValueExpr("run_id"),
			"last_seen_at":   newValueExpr("last_seen_at"),
		}),
	}).Create(alias).Error
	if err != nil {
		return queryError(err)
	}
	return nil
}

// GetAliasByRequestedURL returns the alias row, or nil when absent.
func (s *Store) GetAliasByRequestedURL(requestedURL string) (*UrlAlias, *StoreError) {
	var alias UrlAlias
	err := s.db.Where("requested_url = ?", requestedURL).First(&alias).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(err)
	}
	return &alias, nil
}

// ListAliasesForFinalURL returns every alias resolving to finalURL.
func (s *Store) ListAliasesForFinalURL(finalURL string) ([]UrlAlias, *StoreError) {
	var aliases []UrlAlias
	err := s.db.Where("final_url = ?", finalURL).Order("id asc").Find(&aliases).Error
	if err != nil {
		return nil, queryError(err)
	}
	return aliases, nil
}
