package state

import (
	"context"
	"fmt"

	"github.com/rajarshidattapy/resumeness/internal/config"
	"github.com/rajarshidattapy/resumeness/internal/database"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

// OpenPersister builds the persister selected by cfg.StoreBackend. The
// returned close function releases any connection it opened.
func OpenPersister(ctx context.Context, cfg config.Config) (Persister, func() error, error) {
	noop := func() error { return nil }
	switch cfg.StoreBackend {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "postgres":
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return NewPostgresStore(db, cfg.WorkspaceID), db.Close, nil
	case "file", "":
		return NewFileStore(cfg.StatePath), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// SeedFromConfig is DefaultSeed with the knowledge base replaced by the
// configured seed file, when there is one.
func SeedFromConfig(cfg config.Config) (Persisted, error) {
	seed := DefaultSeed()
	if cfg.KnowledgeSeedPath == "" {
		return seed, nil
	}
	items, err := knowledge.LoadFile(cfg.KnowledgeSeedPath)
	if err != nil {
		return Persisted{}, err
	}
	seed.KnowledgeBase = items
	return seed, nil
}
