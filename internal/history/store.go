// Package history keeps the in-memory log of past symptom checks.
//
// The log is newest-first: AddEntry puts the new entry at the head. Reads
// hand out copies, so a slice returned by GetAll or Search never changes
// after the call returns, even while a background submission appends.
//
// The store also owns the "initialized" flag that decides whether the
// built-in sample entries may be inserted. The flag is set once by
// InitializeWithSampleData and survives Clear, so samples don't come back
// after the user wiped their history. ResetToInitialState clears both.
package history

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/symvora/internal/model"
)

// Store is the symptom history log. The zero value is not usable; call New.
// A Store is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	entries     []model.SymptomHistoryEntry // index 0 = newest
	initialized bool
	lastStamp   int64

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the entry ID source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates an empty, uninitialized Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddEntry records one submission and returns the stored entry.
// Content is not validated: callers reject blank symptoms before calling,
// and an error text is a legitimate response.
func (s *Store) AddEntry(symptoms, aiResponse string) model.SymptomHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixMilli()
	if stamp < s.lastStamp {
		stamp = s.lastStamp
	}
	s.lastStamp = stamp

	entry := model.SymptomHistoryEntry{
		ID:         s.newID(),
		Symptoms:   symptoms,
		AIResponse: aiResponse,
		Timestamp:  stamp,
	}

	s.entries = slices.Insert(s.entries, 0, entry)
	return entry
}

// GetAll returns a copy of the whole log, most recent first.
func (s *Store) GetAll() []model.SymptomHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Search returns the entries whose symptoms, response or ID contain query,
// ignoring case. A blank query returns the same as GetAll.
// Matches are sorted by timestamp, newest first; equal timestamps keep
// their log order.
func (s *Store) Search(query string) []model.SymptomHistoryEntry {
	if strings.TrimSpace(query) == "" {
		return s.GetAll()
	}
	needle := strings.ToLower(query)

	s.mu.RLock()
	out := make([]model.SymptomHistoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if containsFold(e.Symptoms, needle) ||
			containsFold(e.AIResponse, needle) ||
			containsFold(e.ID, needle) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.SymptomHistoryEntry) int {
		switch {
		case a.Timestamp > b.Timestamp:
			return -1
		case a.Timestamp < b.Timestamp:
			return 1
		}
		return 0
	})
	return out
}

// containsFold reports whether lowerNeedle occurs in s, comparing without
// regard to case. No locale rules are applied.
func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

// InitializeWithSampleData inserts the built-in example entries the first
// time it is called. Later calls, including concurrent ones, do nothing.
func (s *Store) InitializeWithSampleData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	now := s.now()
	for _, sample := range samples {
		s.entries = append(s.entries, model.SymptomHistoryEntry{
			ID:         s.newID(),
			Symptoms:   sample.symptoms,
			AIResponse: sample.response,
			Timestamp:  now.Add(-sample.age).UnixMilli(),
		})
	}
	s.initialized = true
}

// Initialized reports whether sample seeding has already happened.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes every entry but keeps the initialized flag.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// ResetToInitialState removes every entry and re-enables sample seeding.
func (s *Store) ResetToInitialState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.initialized = false
}
