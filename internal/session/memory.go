package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// MemoryStore keeps sessions in process. State is stored as JSON so callers
// never share maps with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	// nextSweep is when Save next drops expired entries. Sessions that are
	// never loaded again would otherwise stay forever.
	nextSweep time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryTTL expires sessions ttl after their last save. Zero keeps them
// until deleted.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (wizard.State, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expires.IsZero() && !s.now().Before(entry.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return wizard.State{}, ErrNotFound
	}
	var state wizard.State
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return wizard.State{}, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return state, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, state wizard.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", id, err)
	}
	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sweepLocked()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, expired ones included until the
// next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweepLocked drops expired entries at most once per TTL.
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	for id, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, id)
		}
	}
	s.nextSweep = now.Add(s.ttl)
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
