package database

import (
	"context"
	"fmt"

	"imagesearch/types"
)

// CorpusStore persists fingerprints in insertion order.
//
// Append only adds a fingerprint when no identical record exists for the same
// filepath and reports whether it was added. ReadAll returns the whole corpus.
type CorpusStore interface {
	ReadAll(ctx context.Context) ([]types.Fingerprint, error)
	Append(ctx context.Context, fp types.Fingerprint) (bool, error)
	ContainsPath(ctx context.Context, path string) (bool, error)
	Close() error
}

// Open returns the store for driver ("json" or "sqlite") at path.
func Open(driver, path string) (CorpusStore, error) {
	switch driver {
	case "json", "":
		return NewJSONStore(path), nil
	case "sqlite":
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// CorpusStats summarizes the content of a store.
type CorpusStats struct {
	Fingerprints  int
	DistinctPaths int
}

// GetCorpusStats reads the corpus and counts its records.
func GetCorpusStats(ctx context.Context, store CorpusStore) (*CorpusStats, error) {
	corpus, err := store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(corpus))
	for _, fp := range corpus {
		paths[fp.Filepath] = struct{}{}
	}
	return &CorpusStats{Fingerprints: len(corpus), DistinctPaths: len(paths)}, nil
}

func readError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrCorpusRead, path, err)
}

func writeError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrCorpusWrite, path, err)
}
