// Package banstore provides the persistent ban lookup the protocol layer
// consults at connection admission and writes to on misbehavior. The spec
// treats this as a simple external key->value collaborator (spec.md §1,
// §6.4): key is a client IP, value is "0" (known, not banned) or "1"
// (banned). Read failures are treated as not-banned; write failures are
// logged and dropped (spec.md §7).
package banstore

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// Store is the interface internal/protocol depends on. The shipped
// implementation is an in-memory map guarded by a sync.RWMutex, with optional JSON
// file persistence, in the spirit of the teacher's plain map-plus-mutex
// bookkeeping for auxiliary state (internal/api/ratelimit.go,
// internal/chat/ratelimit.go) rather than a specific embedded database - no
// such dependency exists anywhere in the retrieval pack's closely related
// repos, and the spec itself calls this "a simple key->value lookup", not a
// named database.
type Store interface {
	IsBanned(ip string) bool
	Ban(ip string) error
	Track(ip string) error // records ip as known-not-banned if previously unseen
}

// FileStore is a Store backed by an in-memory map, optionally persisted to a
// JSON file on every write and loaded from that file at construction.
type FileStore struct {
	path string
	mu   sync.RWMutex
	data map[string]string
}

// NewFileStore loads path if it exists (a missing file is not an error - it
// simply starts empty) and returns a Store that persists subsequent writes
// back to path. Pass an empty path for a purely in-memory store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]string)}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, err
	}
	return s, nil
}

// IsBanned reports whether ip's stored value is "1". A read failure (here,
// simply "unseen") is treated as not-banned.
func (s *FileStore) IsBanned(ip string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[ip] == "1"
}

// Ban records ip as banned ("1"). Persistence failures are logged and
// dropped, not propagated, matching spec.md §7's store-failure handling.
func (s *FileStore) Ban(ip string) error {
	return s.set(ip, "1")
}

// Track records ip as known-not-banned ("0") if it has no existing entry,
// mirroring core.hpp's handle_init_packet tracking behavior.
func (s *FileStore) Track(ip string) error {
	s.mu.RLock()
	_, known := s.data[ip]
	s.mu.RUnlock()
	if known {
		return nil
	}
	return s.set(ip, "0")
}

func (s *FileStore) set(ip, value string) error {
	s.mu.Lock()
	s.data[ip] = value
	snapshot := make(map[string]string, len(s.data))
	for k, v := range s.data {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("🛑 banstore: marshal failed: %v", err)
		return nil
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		log.Printf("🛑 banstore: write failed: %v", err)
		return nil
	}
	return nil
}
