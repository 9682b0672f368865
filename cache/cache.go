// Package cache persists lookup results between runs as flat JSON files,
// one file per lookup kind. A long follow batch can be interrupted and
// resumed without re-resolving accounts that already succeeded.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/birdsync/birdsync/conf"
)

const (
	DefaultDir = "cache"

	TwitterHandleFile = "twitter_cache.json"
	BskyActorFile     = "bluesky_cache.json"
)

// Store is a write-through JSON file cache keyed by string.
type Store[V any] struct {
	path    string
	entries map[string]V
	log     *conf.Log
}

// Open loads the cache file at dir/name. A missing file starts empty; a
// corrupted file is discarded with a warning rather than failing the run.
func Open[V any](dir, name string) (*Store[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}
	s := &Store[V]{
		path:    filepath.Join(dir, name),
		entries: map[string]V{},
		log:     conf.NewLog(),
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading %s: %w", s.path, err)
	}
	if err = json.Unmarshal(raw, &s.entries); err != nil {
		s.log.WithErrorMsg(err, "Discarding corrupted cache file", "path", s.path)
		s.entries = map[string]V{}
	}
	return s, nil
}

func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Put records the entry and writes the file through to disk so an
// interrupted batch keeps everything cached so far.
func (s *Store[V]) Put(key string, value V) error {
	s.entries[key] = value
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", s.path, err)
	}
	if err = os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("cache: writing %s: %w", s.path, err)
	}
	return nil
}

func (s *Store[V]) Len() int {
	return len(s.entries)
}
