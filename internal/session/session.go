// Package session holds the external collaborator contracts of the
// server: credential resolution for inbound tokens and opaque session
// state storage. Both are interfaces so deployments can plug in their
// own backends; an in-memory store ships here for single-process use.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tracknest/tracker-mcp-go/internal/domain"

	trackererr "github.com/tracknest/tracker-mcp-go/internal/errors"
)

// Resolver turns an inbound bearer token into the credential it
// stands for. Failure means the request is unauthenticated.
type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.UserCredential, error)
}

// StaticResolver resolves tokens from a fixed map, for configuration
// file deployments and tests.
type StaticResolver map[string]domain.UserCredential

// Resolve implements Resolver.
func (r StaticResolver) Resolve(_ context.Context, token string) (domain.UserCredential, error) {
	cred, ok := r[token]
	if !ok {
		return domain.UserCredential{}, &trackererr.AuthenticationError{Reason: "unknown token"}
	}

	return cred, nil
}

// Store is opaque key-value session state with an external TTL.
// Concurrent writers to one id are the store's responsibility, not
// the caller's.
type Store interface {
	Exists(id string) bool
	Read(id string) ([]byte, bool)
	Write(id string, data []byte) error
	Destroy(id string) error
	GarbageCollect() []string
}

// NewID returns a fresh lexicographically sortable session id.
func NewID() string {
	return ulid.Make().String()
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a process-local Store with TTL-based expiry. Reads
// of expired entries behave as absent; reaping happens on
// GarbageCollect.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store whose entries live for ttl after
// their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := s.entries[id]
	if !ok || s.now().After(entry.expiresAt) {
		return memoryEntry{}, false
	}

	return entry, true
}

// Exists implements Store.
func (s *MemoryStore) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.live(id)

	return ok
}

// Read implements Store.
func (s *MemoryStore) Read(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.live(id)
	if !ok {
		return nil, false
	}

	return entry.data, true
}

// Write implements Store. Writing refreshes the entry's TTL.
func (s *MemoryStore) Write(id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}

	return nil
}

// Destroy implements Store. Destroying an absent id is not an error.
func (s *MemoryStore) Destroy(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)

	return nil
}

// GarbageCollect implements Store, reaping expired entries and
// returning their ids.
func (s *MemoryStore) GarbageCollect() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var expired []string
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			expired = append(expired, id)
			delete(s.entries, id)
		}
	}

	return expired
}
