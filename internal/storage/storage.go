// Package storage persists named JSON blobs for the persistence server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Keys under which the server stores each table.
const (
	KeyArtwork = "artwork_data"
	KeyRecipes = "recipe_table"
	KeyColors  = "color_table"
)

const (
	BackendSQLite = "sqlite"
	BackendPebble = "pebble"
)

// ErrNotFound is returned by Get when no blob was ever stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// Blobs is a string-keyed store of opaque values. Set replaces the whole
// value; there are no partial updates.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open opens the blob store for backend at path, creating parent
// directories as needed.
func Open(backend, path string) (Blobs, error) {
	if path == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	switch backend {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendPebble:
		return OpenPebble(path)
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
