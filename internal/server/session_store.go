// internal/server/session_store.go
package server

import "sync"

// SessionStore tracks the set of live game sessions. The accept loop is the
// only writer; shutdown iterates it to close every connection.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

func (s *SessionStore) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.GameID] = sess
}

func (s *SessionStore) Delete(gameID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, gameID)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Each calls fn for every live session while holding the store lock.
func (s *SessionStore) Each(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		fn(sess)
	}
}
