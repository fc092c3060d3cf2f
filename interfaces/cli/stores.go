package cli

import (
	"fmt"

	domainconfig "github.com/felixgeelhaar/reflex-go/domain/config"
	"github.com/felixgeelhaar/reflex-go/domain/episode"
	"github.com/felixgeelhaar/reflex-go/domain/event"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/memory"
	"github.com/felixgeelhaar/reflex-go/infrastructure/storage/sqlite"
)

// stores bundles the persistence backends for one run.
type stores struct {
	events   event.Store
	episodes episode.Store
	closers  []func() error
}

// Close releases any underlying databases.
func (s *stores) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openStores builds event and episode stores from a scenario's store
// configuration. The badger backend persists the event journal, which
// is what replay and verify read across processes; sqlite persists
// episode snapshots; memory keeps everything in-process.
func openStores(cfg domainconfig.StoreConfig) (*stores, error) {
	switch cfg.Backend {
	case "", domainconfig.BackendMemory:
		return &stores{
			events:   memory.NewEventStore(),
			episodes: memory.NewEpisodeStore(),
		}, nil

	case domainconfig.BackendBadger:
		es, err := badger.NewEventStore(badger.DefaultConfig(), badger.WithDir(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("open badger store: %w", err)
		}
		return &stores{
			events:   es,
			episodes: memory.NewEpisodeStore(),
			closers:  []func() error{es.Close},
		}, nil

	case domainconfig.BackendSQLite:
		ps, err := sqlite.NewEpisodeStore(sqlite.DefaultConfig(),
			sqlite.WithDSN("file:"+cfg.Path), sqlite.WithAutoMigrate())
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &stores{
			events:   memory.NewEventStore(),
			episodes: ps,
			closers:  []func() error{ps.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}
}
