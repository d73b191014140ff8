package featurecache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultCleanupInterval is the default period between janitor sweeps that
// evict expired entries.
const DefaultCleanupInterval = 15 * time.Minute

// memoryEntry wraps an Entry with its expiry deadline.
type memoryEntry struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is an in-process TTL cache backed by a mutex-guarded map.
// Reads take a shared lock; the janitor and writers take a brief exclusive
// lock. Suitable for single-replica deployments; use RedisStore to share
// the cache across replicas.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry

	jobMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewMemoryStore creates an in-memory store with the given TTL.
// A non-positive TTL falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a live entry. Expired entries are treated as missing; they
// are left for the janitor rather than evicted inline to keep reads on the
// shared lock.
func (s *MemoryStore) Get(_ context.Context, lawyerID, kind string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[Key(lawyerID, kind)]
	if !ok || s.now().After(e.expiresAt) {
		return Entry{}, ErrNotFound
	}
	return e.entry, nil
}

// Set stores an entry with the store's TTL.
func (s *MemoryStore) Set(_ context.Context, lawyerID, kind string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[Key(lawyerID, kind)] = memoryEntry{
		entry:     entry,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Purge removes every entry for one lawyer.
func (s *MemoryStore) Purge(_ context.Context, lawyerID string) error {
	prefix := lawyerID + ":"

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the number of stored entries, including not-yet-swept
// expired ones.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// cleanup evicts expired entries. Returns the number evicted.
func (s *MemoryStore) cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}
	return evicted
}

// StartJanitor begins the periodic cleanup job. Returns immediately; the
// job runs in a goroutine until StopJanitor is called. Starting twice is a
// no-op.
func (s *MemoryStore) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if evicted := s.cleanup(); evicted > 0 {
					slog.Debug("evicted expired feature cache entries", "count", evicted)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// StopJanitor halts the cleanup job and waits for it to exit.
func (s *MemoryStore) StopJanitor() {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.running = false
}
