package session

import (
	"context"
	"errors"
	"time"

	"github.com/wuwumall/wuwumall-backend/internal/app/model"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Session is the server-side login state. The embedded user snapshot is
// what handlers read; the account record stays authoritative and the
// snapshot is refreshed on profile changes.
type Session struct {
	ID           string           `json:"id"`
	User         model.PublicUser `json:"user"`
	Remember     bool             `json:"remember"`
	CreatedAt    time.Time        `json:"createdAt"`
	LastActivity time.Time        `json:"lastActivity"`
}

// Backend stores sessions, remembered accounts and login failure
// counters. Redis is preferred; the in-memory backend is the fallback
// when Redis is disabled or unreachable.
type Backend interface {
	SaveSession(ctx context.Context, s *Session, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	// SweepExpired removes idle sessions and returns how many were
	// dropped. Backends with native TTL may return 0.
	SweepExpired(ctx context.Context) (int, error)

	RememberAccount(ctx context.Context, account string, ttl time.Duration) error
	IsRemembered(ctx context.Context, account string) (bool, error)
	ForgetAccount(ctx context.Context, account string) error

	// RecordFailure appends a failed login for the account and returns
	// the number of failures inside the window.
	RecordFailure(ctx context.Context, account string, window time.Duration) (int, error)
	ClearFailures(ctx context.Context, account string) error

	Close() error
}
