package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store keeps independent sessions in memory. No session observes another's
// cells.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	options  func() Options
}

// NewStore returns an empty store. options is called whenever a session is
// created so that config reloads apply to new sessions.
func NewStore(options func() Options) *Store {
	if options == nil {
		options = func() Options { return Options{} }
	}
	return &Store{
		sessions: make(map[string]*Session),
		options:  options,
	}
}

// Create makes a new session with a random ID.
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.options())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	logrus.WithField("session", s.ID).Info("session created")
	return s
}

// Get returns the session with the given ID and marks it active. The touch
// happens under the store lock, so a concurrent ReapIdle cannot drop a
// session that was just handed out.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[id]
	if ok {
		s.touch()
	}
	return s, ok
}

// GetOrCreate returns the session with the given ID, creating it if needed.
// It lets clients use well-known names such as "default".
func (st *Store) GetOrCreate(id string) *Session {
	if s, ok := st.Get(id); ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		s.touch()
		return s
	}
	s := New(id, st.options())
	st.sessions[id] = s
	logrus.WithField("session", id).Info("session created")
	return s
}

// Delete removes a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// IDs returns the sorted IDs of all sessions.
func (st *Store) IDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// ReapIdle removes sessions that have been inactive for longer than idle
// as of now. It returns the removed IDs.
func (st *Store) ReapIdle(now time.Time, idle time.Duration) []string {
	if idle <= 0 {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	var reaped []string
	for id, s := range st.sessions {
		if now.Sub(s.LastActive()) > idle {
			delete(st.sessions, id)
			reaped = append(reaped, id)
		}
	}
	sort.Strings(reaped)
	return reaped
}
