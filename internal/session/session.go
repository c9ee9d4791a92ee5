// Package session holds the signed-in user of the running client.
//
// State is the single owner of "who is logged in". It never talks to the
// network: the account collaborator decides whether a login worked, and the
// caller then hands the resulting user to SetUser.
//
// Readers always see a whole user or none. Writers replace the user under a
// lock and then notify subscribers, which is how the screen flow learns that
// it has to re-check the navigation gate.
package session

import (
	"sync"

	"github.com/sakif/symvora/internal/model"
)

// State is safe for concurrent use. Create it with New.
type State struct {
	mu   sync.RWMutex
	user *model.User

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// New returns a State with no user.
func New() *State {
	return &State{subs: make(map[int]chan struct{})}
}

// SetUser replaces the current user. Pass nil to sign out.
// The user is copied; later changes to *user don't leak in.
func (s *State) SetUser(user *model.User) {
	s.mu.Lock()
	if user == nil {
		s.user = nil
	} else {
		u := *user
		s.user = &u
	}
	s.mu.Unlock()

	s.notify()
}

// IsAuthenticated reports whether a user is present.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser returns a copy of the current user.
func (s *State) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// UpdateName changes the display name of the current user and keeps the
// email. Without a user it does nothing.
func (s *State) UpdateName(name string) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	updated := s.user.WithName(name)
	s.user = &updated
	s.mu.Unlock()

	s.notify()
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce: a slow reader sees one pending signal, not one per
// change, and must re-read the state when it wakes up.
// Call the returned function to stop receiving.
func (s *State) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *State) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
