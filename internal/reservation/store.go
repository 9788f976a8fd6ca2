package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionNotFound = errors.New("reservation: session not found or expired")
	ErrSessionExists   = errors.New("reservation: session id already in use")
)

// SessionStore keeps wizard state between requests. Reservations are never
// written to the relational store.
type SessionStore interface {
	// Create stores a new session and fails with ErrSessionExists when the
	// id is taken by a live session.
	Create(ctx context.Context, state *State, ttl time.Duration) error
	Save(ctx context.Context, state *State, ttl time.Duration) error
	Get(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is a single-instance SessionStore. Entries are copied on the
// way in and out so callers never share state. Expired entries are invisible
// to Get and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, state *State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if entry, ok := s.entries[state.ID]; ok && now.Before(entry.expiresAt) {
		return ErrSessionExists
	}
	s.entries[state.ID] = memoryEntry{payload: payload, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Save(_ context.Context, state *State, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state.ID] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()

	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, ErrSessionNotFound
	}
	var state State
	if err := json.Unmarshal(entry.payload, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len is the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
