package overrides

import (
	"sync"
	"time"

	"github.com/rohmanhakim/sitemap-archiver/internal/metadata"
	"github.com/rohmanhakim/sitemap-archiver/internal/store"
)

/*
Per-host selector configuration. Overrides are edited out of band and
read-only during a crawl; the service caches rows per domain so a crawl
hits the database once per host.
*/

// Override is the selector configuration for one host. ForceFetchMode
// is empty unless the row pins a mode for the whole domain.
type Override struct {
	ContentSelectors []string
	RemoveSelectors  []string
	ForceFetchMode   string
}

type Service struct {
	metadataSink metadata.MetadataSink
	store        *store.Store

	mu    sync.RWMutex
	cache map[string]Override
}

func NewService(metadataSink metadata.MetadataSink, s *store.Store) *Service {
	return &Service{
		metadataSink: metadataSink,
		store:        s,
		cache:        make(map[string]Override),
	}
}

// ForDomain returns the override for a host, or a zero Override when
// none is configured. Lookup failures degrade to the zero Override
// with a recorded warning; overrides never block a crawl.
func (s *Service) ForDomain(domain string) Override {
	s.mu.RLock()
	cached, ok := s.cache[domain]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	override := Override{}
	row, err := s.store.GetDomainOverride(domain)
	if err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"overrides",
			"Service.ForDomain",
			metadata.CauseStorageFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrDomain, domain),
			},
		)
	} else if row != nil && row.Enabled {
		override = Override{
			ContentSelectors: row.GetContentSelectorsArray(),
			RemoveSelectors:  row.GetRemoveSelectorsArray(),
			ForceFetchMode:   row.ForceFetchMode,
		}
	}

	s.mu.Lock()
	s.cache[domain] = override
	s.mu.Unlock()
	return override
}
