package store

import (
	"sync"
	"time"
)

// MemorySessionStore keeps sessions in process memory. Test and dev use.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// NewMemorySessionStore builds an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) SaveToken(token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemorySessionStore) GetUserIDByToken(token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, token)
		return "", false, nil
	}
	return sess.userID, true, nil
}

func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
