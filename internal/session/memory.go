package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	userID  int64
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart and are not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]entry{}, now: time.Now}
}

func (m *MemoryStore) Track(_ context.Context, sessionID string, userID int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
		}
	}
	m.sessions[sessionID] = entry{userID: userID, expires: now.Add(ttl)}
	return nil
}

func (m *MemoryStore) Active(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Revoke(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
