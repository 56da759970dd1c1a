package session

import (
	"context"
	"time"

	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
	"github.com/wuwumall/wuwumall-backend/pkg/util"
)

// Manager owns session lifecycle: creation at login, idle expiry,
// heartbeat renewal and teardown at logout.
type Manager struct {
	backend Backend
	cfg     *config.SessionConfig
	bus     *events.Bus
}

// NewManager creates a session manager
func NewManager(backend Backend, cfg *config.SessionConfig, bus *events.Bus) *Manager {
	return &Manager{backend: backend, cfg: cfg, bus: bus}
}

// Create opens a new session for a logged-in account
func (m *Manager) Create(ctx context.Context, user model.PublicUser, remember bool) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:           util.NewID("sess"),
		User:         user,
		Remember:     remember,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := m.backend.SaveSession(ctx, s, m.cfg.IdleTimeout); err != nil {
		return nil, err
	}

	logger.Info("Session created", map[string]interface{}{
		"session_id": s.ID,
		"user_id":    user.ID,
		"remember":   remember,
	})
	return s, nil
}

// Get returns the session if it is still inside the idle window and
// slides the window forward. Expired sessions are torn down here even
// before the sweeper sees them.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, err := m.backend.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if time.Since(s.LastActivity) > m.cfg.IdleTimeout {
		m.expire(ctx, s)
		return nil, ErrSessionNotFound
	}

	s.LastActivity = time.Now()
	if err := m.backend.SaveSession(ctx, s, m.cfg.IdleTimeout); err != nil {
		return nil, err
	}
	return s, nil
}

// Heartbeat renews the idle window without any other side effects.
// Clients call it periodically while a page stays open.
func (m *Manager) Heartbeat(ctx context.Context, id string) error {
	s, err := m.backend.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if time.Since(s.LastActivity) > m.cfg.IdleTimeout {
		m.expire(ctx, s)
		return ErrSessionNotFound
	}

	s.LastActivity = time.Now()
	return m.backend.SaveSession(ctx, s, m.cfg.IdleTimeout)
}

// RefreshUser updates the user snapshot inside an existing session
func (m *Manager) RefreshUser(ctx context.Context, id string, user model.PublicUser) error {
	s, err := m.backend.GetSession(ctx, id)
	if err != nil {
		return err
	}
	s.User = user
	return m.backend.SaveSession(ctx, s, m.cfg.IdleTimeout)
}

// Delete tears down a session at logout
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.backend.DeleteSession(ctx, id); err != nil {
		return err
	}
	logger.Info("Session deleted", map[string]interface{}{"session_id": id})
	return nil
}

// Sweep drops expired sessions, called from the scheduler
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	removed, err := m.backend.SweepExpired(ctx)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Info("Swept expired sessions", map[string]interface{}{"removed": removed})
	}
	return removed, nil
}

// Remember marks an account so login pages can prefill it
func (m *Manager) Remember(ctx context.Context, account string) error {
	return m.backend.RememberAccount(ctx, account, m.cfg.RememberTTL)
}

// IsRemembered reports whether an account opted into prefill
func (m *Manager) IsRemembered(ctx context.Context, account string) (bool, error) {
	return m.backend.IsRemembered(ctx, account)
}

// Forget clears the remembered flag
func (m *Manager) Forget(ctx context.Context, account string) error {
	return m.backend.ForgetAccount(ctx, account)
}

// RecordLoginFailure counts a failed attempt and reports whether the
// account crossed the lock threshold inside the window.
func (m *Manager) RecordLoginFailure(ctx context.Context, account string) (locked bool, err error) {
	count, err := m.backend.RecordFailure(ctx, account, m.cfg.LockWindow)
	if err != nil {
		return false, err
	}

	if count >= m.cfg.LockThreshold {
		logger.Warn("Account crossed login failure threshold", map[string]interface{}{
			"account":  account,
			"failures": count,
			"window":   m.cfg.LockWindow.String(),
		})
		return true, nil
	}
	return false, nil
}

// ClearLoginFailures resets the counter after a successful login
func (m *Manager) ClearLoginFailures(ctx context.Context, account string) error {
	return m.backend.ClearFailures(ctx, account)
}

func (m *Manager) expire(ctx context.Context, s *Session) {
	if err := m.backend.DeleteSession(ctx, s.ID); err != nil {
		logger.Error("Failed to delete expired session", err, map[string]interface{}{
			"session_id": s.ID,
		})
		return
	}
	if m.bus != nil {
		m.bus.Publish(events.TopicSessionExpire, map[string]interface{}{
			"sessionId": s.ID,
			"userId":    s.User.ID,
		})
	}
}
