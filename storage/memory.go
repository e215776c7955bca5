package storage

import (
	"context"
	"sync"

	betafeatures "github.com/tinajohnson/mediawiki-extensions-BetaFeatures"
)

// MemoryCountStore implements the CountStore interface using an in-memory
// map. This is useful for testing or simple applications where persistence
// is not required.
type MemoryCountStore struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewMemoryCountStore creates a new instance of MemoryCountStore.
func NewMemoryCountStore() *MemoryCountStore {
	return &MemoryCountStore{
		counts: make(map[string]int64),
	}
}

// GetCounts returns a copy of every stored feature count.
func (s *MemoryCountStore) GetCounts(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64, len(s.counts))
	for feature, n := range s.counts {
		counts[feature] = n
	}
	return counts, nil
}

// UpsertCount replaces the stored count for a feature.
func (s *MemoryCountStore) UpsertCount(_ context.Context, feature string, count int64) error {
	if feature == "" {
		return betafeatures.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[feature] = count
	return nil
}

// Close clears the stored counts.
func (s *MemoryCountStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]int64)
	return nil
}

// MemoryUserStore is an in-memory stand-in for the host's account store,
// used by tests and the demo server. It keeps per-user option states.
type MemoryUserStore struct {
	mu      sync.RWMutex
	options map[string]map[string]betafeatures.OptionState // userID -> key -> state
}

// NewMemoryUserStore creates an empty user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		options: make(map[string]map[string]betafeatures.OptionState),
	}
}

// Options returns a copy of the user's option states.
func (s *MemoryUserStore) Options(_ context.Context, userID string) (map[string]betafeatures.OptionState, error) {
	if userID == "" {
		return nil, betafeatures.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	options := make(map[string]betafeatures.OptionState, len(s.options[userID]))
	for key, state := range s.options[userID] {
		options[key] = state
	}
	return options, nil
}

// SetOptions merges the given option states into the user's stored options.
// Setting a key to StateUnset removes the stored opinion.
func (s *MemoryUserStore) SetOptions(_ context.Context, userID string, options map[string]betafeatures.OptionState) error {
	if userID == "" {
		return betafeatures.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.options[userID]
	if !ok {
		stored = make(map[string]betafeatures.OptionState)
		s.options[userID] = stored
	}
	for key, state := range options {
		if state == betafeatures.StateUnset {
			delete(stored, key)
			continue
		}
		stored[key] = state
	}
	return nil
}

// CountEnabled scans every user and counts those with the feature enabled.
func (s *MemoryUserStore) CountEnabled(_ context.Context, feature string) (int64, error) {
	if feature == "" {
		return 0, betafeatures.ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, options := range s.options {
		if options[feature] == betafeatures.StateEnabled {
			n++
		}
	}
	return n, nil
}
