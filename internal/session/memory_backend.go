package session

import (
	"context"
	"sync"
	"time"

	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// memoryBackend is the process-local fallback when Redis is disabled.
// Sessions vanish on restart; the sweeper enforces expiry since there
// is no native TTL.
type memoryBackend struct {
	mu        sync.RWMutex
	sessions  map[string]*memorySession
	remembers map[string]time.Time
	failures  map[string][]time.Time
}

type memorySession struct {
	session   Session
	expiresAt time.Time
}

// NewMemoryBackend creates an in-process session backend
func NewMemoryBackend() Backend {
	logger.Info("Using in-memory session backend", nil)
	return &memoryBackend{
		sessions:  make(map[string]*memorySession),
		remembers: make(map[string]time.Time),
		failures:  make(map[string][]time.Time),
	}
}

func (b *memoryBackend) SaveSession(ctx context.Context, s *Session, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	copied := *s
	b.sessions[s.ID] = &memorySession{session: copied, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (b *memoryBackend) GetSession(ctx context.Context, id string) (*Session, error) {
	b.mu.RLock()
	entry, ok := b.sessions[id]
	b.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		b.mu.Lock()
		delete(b.sessions, id)
		b.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	copied := entry.session
	return &copied, nil
}

func (b *memoryBackend) DeleteSession(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, id)
	return nil
}

func (b *memoryBackend) SweepExpired(ctx context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, entry := range b.sessions {
		if now.After(entry.expiresAt) {
			delete(b.sessions, id)
			removed++
		}
	}
	for account, until := range b.remembers {
		if now.After(until) {
			delete(b.remembers, account)
		}
	}
	return removed, nil
}

func (b *memoryBackend) RememberAccount(ctx context.Context, account string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remembers[account] = time.Now().Add(ttl)
	return nil
}

func (b *memoryBackend) IsRemembered(ctx context.Context, account string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	until, ok := b.remembers[account]
	return ok && time.Now().Before(until), nil
}

func (b *memoryBackend) ForgetAccount(ctx context.Context, account string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.remembers, account)
	return nil
}

func (b *memoryBackend) RecordFailure(ctx context.Context, account string, window time.Duration) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	recent := []time.Time{}
	for _, at := range b.failures[account] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}
	recent = append(recent, now)
	// Keep the last ten attempts at most
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	b.failures[account] = recent
	return len(recent), nil
}

func (b *memoryBackend) ClearFailures(ctx context.Context, account string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, account)
	return nil
}

func (b *memoryBackend) Close() error {
	return nil
}
