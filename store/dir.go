package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/onyx"
)

// Dir stores each slot in <dir>/<slot>.json, human-readable and
// version-controllable.
type Dir struct {
	dir string
}

var _ Backend = (*Dir)(nil)

// NewDir opens a directory store, creating the directory if needed.
func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, errors.New("empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create data directory %q: %w", dir, err)
	}
	return &Dir{dir: dir}, nil
}

func (d *Dir) path(slot onyx.Slot) string {
	return filepath.Join(d.dir, string(slot)+".json")
}

// Load reads a slot file.
func (d *Dir) Load(_ context.Context, slot onyx.Slot) ([]byte, error) {
	data, err := os.ReadFile(d.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, onyx.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", d.path(slot), err)
	}
	return data, nil
}

// Save replaces a slot file atomically.
func (d *Dir) Save(_ context.Context, slot onyx.Slot, data []byte) error {
	f, err := os.CreateTemp(d.dir, string(slot)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temporary file: %w", err)
	}
	defer os.Remove(f.Name()) // no-op once renamed
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %q: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", f.Name(), err)
	}
	if err := os.Rename(f.Name(), d.path(slot)); err != nil {
		return fmt.Errorf("cannot replace %q: %w", d.path(slot), err)
	}
	return nil
}

// Close implements Backend.
func (d *Dir) Close() error { return nil }
