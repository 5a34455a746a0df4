package storage

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"
)

var blobKeyPrefix = []byte("kv/")

// PebbleStore keeps blobs in an embedded Pebble directory.
type PebbleStore struct {
	db *pebble.DB
}

func OpenPebble(dir string) (*PebbleStore, error) {
	opts := pebble.Options{}
	db, err := pebble.Open(dir, &opts)
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db}, nil
}

func blobKey(key string) []byte {
	return append(append([]byte{}, blobKeyPrefix...), key...)
}

func (s *PebbleStore) Get(_ context.Context, key string) ([]byte, error) {
	val, closer, err := s.db.Get(blobKey(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	// val is only valid until closer is closed.
	return append([]byte(nil), val...), nil
}

func (s *PebbleStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Set(blobKey(key), value, pebble.Sync)
}

func (s *PebbleStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
