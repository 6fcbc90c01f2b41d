package recovery

import (
	"context"
	"errors"
	"sync"

	"github.com/aussiebroadwan/mindful/internal/account/domain"
)

// MemoryStore is a process-local SessionStore. Sessions do not survive a
// restart; users simply start recovery again.
type MemoryStore struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]domain.RecoverySession
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{
		opts:     opts.withDefaults(),
		sessions: make(map[string]domain.RecoverySession),
	}
}

func (m *MemoryStore) Issue(ctx context.Context, userID, username string) (domain.RecoverySession, error) {
	s, err := m.opts.newSession(userID, username)
	if err != nil {
		return domain.RecoverySession{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
	k := key(s.Token)
	if _, taken := m.sessions[k]; taken {
		return domain.RecoverySession{}, errors.New("recovery: token collision")
	}
	m.sessions[k] = s
	return s, nil
}

func (m *MemoryStore) Validate(ctx context.Context, token string) (domain.RecoverySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupLocked(key(token))
}

func (m *MemoryStore) Consume(ctx context.Context, token string) (domain.RecoverySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(token)
	s, err := m.lookupLocked(k)
	if err != nil {
		return domain.RecoverySession{}, err
	}
	delete(m.sessions, k)
	return s, nil
}

func (m *MemoryStore) PurgeExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purgeLocked(), nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) lookupLocked(k string) (domain.RecoverySession, error) {
	s, ok := m.sessions[k]
	if !ok {
		return domain.RecoverySession{}, ErrInvalidToken
	}
	if s.Expired(m.opts.Now()) {
		delete(m.sessions, k)
		return domain.RecoverySession{}, ErrInvalidToken
	}
	return s, nil
}

func (m *MemoryStore) purgeLocked() int {
	now := m.opts.Now()
	n := 0
	for k, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, k)
			n++
		}
	}
	return n
}
