// Package store provides the persistence backends of an onyx journal: a
// directory of JSON files, one per slot, or a SQLite key/value table.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/onyx"
	"github.com/etnz/onyx/config"
)

// Backend is a Store holding resources until closed.
type Backend interface {
	onyx.Store
	Close() error
}

// Open opens the backend selected in cfg.
func Open(cfg config.DataConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "file":
		return NewDir(cfg.Dir)
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown data backend %q, want file or sqlite", cfg.Backend)
	}
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %q: %w", dir, err)
	}
	return nil
}
