package store

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetDomainOverride returns the override row for a host, or nil.
func (s *Store) GetDomainOverride(domain string) (*DomainOverride, *StoreError) {
	var override DomainOverride
	err := s.db.Where("domain = ?", domain).First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, queryError(err)
	}
	return &override, nil
}

// UpsertDomainOverride inserts or replaces the override keyed by domain.
func (s *Store) UpsertDomainOverride(override *DomainOverride) *StoreError {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "domain"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"enabled":           newValueExpr("enabled"),
			"content_selectors": newValueExpr("content_selectors"),
			"remove_selectors":  newValueExpr("remove_selectors"),
			"force_fetch_mode":  newValueExpr("force_fetch_mode"),
			"notes":             newValueExpr("notes"),
		}),
	}).Create(override).Error
	if err != nil {
		return queryError(err)
	}
	return nil
}
