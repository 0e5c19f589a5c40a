// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/innertalk/innertalk-tui/internal/util"
)

// =============================================================================
// KEY/VALUE STORE
// =============================================================================

// Store is a JSON-file-backed key/value store. Values are opaque strings;
// callers serialize their own structures. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// Open loads the store at path. A missing or unreadable file yields an empty
// store rather than an error.
func Open(path string) *Store {
	s := &Store{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("storage: read %s: %v", path, err)
		}
		return s
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		log.Printf("storage: corrupt store %s, starting empty: %v", path, err)
		s.data = make(map[string]string)
	}
	return s
}

// Load returns the value for key and whether it was present.
func (s *Store) Load(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Save stores a value and flushes the whole store to disk. Disk failures are
// logged and swallowed; the in-memory value is kept either way.
func (s *Store) Save(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	s.flush()
}

// Delete removes a key and flushes.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return
	}
	delete(s.data, key)
	s.flush()
}

// flush writes the store atomically. Caller holds the lock.
func (s *Store) flush() {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		log.Printf("storage: marshal store: %v", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		log.Printf("storage: create dir for %s: %v", s.path, err)
		return
	}

	if err := util.AtomicWriteFile(s.path, raw, 0o644); err != nil {
		log.Printf("storage: write %s: %v", s.path, err)
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

// LoadJSON unmarshals the value for key into v. Returns false when the key is
// absent or the value does not parse.
func (s *Store) LoadJSON(key string, v any) bool {
	raw, ok := s.Load(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("storage: corrupt value for %q: %v", key, err)
		return false
	}
	return true
}

// SaveJSON marshals v and stores it under key. Marshal failures are logged
// and swallowed.
func (s *Store) SaveJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("storage: marshal value for %q: %v", key, err)
		return
	}
	s.Save(key, string(raw))
}
