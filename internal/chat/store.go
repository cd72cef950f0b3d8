package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore persists chat sessions between messages. Get returns
// (nil, nil) when the session is absent or expired.
type SessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Put(ctx context.Context, session Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in a mutex-guarded map with lazy
// TTL expiry. It is the default when no Redis address is configured.
type MemorySessionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[uuid.UUID]memoryEntry
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MemorySessionStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[uuid.UUID]memoryEntry),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.items, id)
		return nil, nil
	}
	session := entry.session
	return &session, nil
}

// Put stores the session and resets its TTL.
func (s *MemorySessionStore) Put(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.ID] = memoryEntry{session: session, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len reports the number of stored sessions, counting entries that
// have expired but not yet been swept.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
