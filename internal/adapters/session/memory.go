package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used when no Redis address is
// configured, and in tests. Expiry is checked lazily on read: a session
// older than the TTL reads as gone, and a non-positive TTL means every
// session is born expired.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
	recents  map[string]Recents
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
		recents:  make(map[string]Recents),
	}
}

func (s *MemoryStore) CreateSession(_ context.Context, steamID string) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = Session{SteamID: steamID, CreatedAt: time.Now()}
	return token, nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNoSession
	}
	if time.Since(sess.CreatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, token)
		delete(s.recents, token)
		s.mu.Unlock()
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Count reports the number of live sessions, for the session gauge.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	delete(s.recents, token)
	return nil
}

func (s *MemoryStore) Recents(_ context.Context, token string) (Recents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recents[token], nil
}

func (s *MemoryStore) TouchAccount(_ context.Context, token string, acc Account, manual bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recents[token] = touch(s.recents[token], acc, manual)
	return nil
}
