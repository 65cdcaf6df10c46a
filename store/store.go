package store

import (
	"context"
	"fmt"

	"github.com/arkantrust/abassist/models"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Default file names. They differ so a bolt log never trips over the SQLite
// action database of an older install.
const (
	DefaultBoltPath   = "generations.bolt"
	DefaultSQLitePath = "actions.db"
)

// Log is an open, append-only generation log.
type Log interface {
	Append(ctx context.Context, rec *models.GenerationRecord) (*models.GenerationRecord, error)
	Get(ctx context.Context, id uint64) (*models.GenerationRecord, error)
	Close() error
}

// DefaultPath returns the file used by backend when no path is configured.
func DefaultPath(backend string) (string, error) {
	switch backend {
	case "", BackendBolt:
		return DefaultBoltPath, nil
	case BackendSQLite:
		return DefaultSQLitePath, nil
	default:
		return "", fmt.Errorf("unknown log backend %q", backend)
	}
}

// Open opens the generation log of the given backend at path. An empty
// backend selects BoltDB; an empty path selects DefaultPath(backend).
func Open(backend, path string) (Log, error) {
	def, err := DefaultPath(backend)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = def
	}

	if backend == BackendSQLite {
		return NewSQLiteLog(path)
	}
	return NewBoltLog(path)
}
