package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/events"
)

func newTestManager(t *testing.T, idle time.Duration) *Manager {
	t.Helper()
	cfg := &config.SessionConfig{
		IdleTimeout:   idle,
		LockThreshold: 5,
		LockWindow:    30 * time.Minute,
		RememberTTL:   720 * time.Hour,
	}
	return NewManager(NewMemoryBackend(), cfg, events.NewBus())
}

func testUser() model.PublicUser {
	return model.PublicUser{
		ID:       "user_1",
		Username: "alice",
		Phone:    "13800138000",
		Role:     model.RoleCustomer,
		Status:   model.StatusActive,
	}
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, testUser(), false)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.User.ID)
	assert.False(t, got.LastActivity.Before(s.LastActivity))
}

func TestManager_GetMissing(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, err := m.Get(context.Background(), "sess_nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_IdleExpiry(t *testing.T) {
	m := newTestManager(t, 10*time.Millisecond)
	ctx := context.Background()

	s, err := m.Create(ctx, testUser(), false)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_HeartbeatExtendsSession(t *testing.T) {
	m := newTestManager(t, 80*time.Millisecond)
	ctx := context.Background()

	s, err := m.Create(ctx, testUser(), false)
	require.NoError(t, err)

	// Keep the session alive past its original window
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		require.NoError(t, m.Heartbeat(ctx, s.ID))
	}

	_, err = m.Get(ctx, s.ID)
	assert.NoError(t, err)
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, testUser(), false)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, s.ID))

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_RefreshUser(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	s, err := m.Create(ctx, testUser(), false)
	require.NoError(t, err)

	updated := testUser()
	updated.Username = "alice2"
	updated.VIPLevel = 3
	require.NoError(t, m.RefreshUser(ctx, s.ID, updated))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.User.Username)
	assert.Equal(t, 3, got.User.VIPLevel)
}

func TestManager_LoginFailures(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		locked, err := m.RecordLoginFailure(ctx, "13800138000")
		require.NoError(t, err)
		assert.False(t, locked, "attempt %d should not lock", i+1)
	}

	locked, err := m.RecordLoginFailure(ctx, "13800138000")
	require.NoError(t, err)
	assert.True(t, locked)

	// A successful login resets the counter
	require.NoError(t, m.ClearLoginFailures(ctx, "13800138000"))
	locked, err = m.RecordLoginFailure(ctx, "13800138000")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestManager_RememberAccount(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()

	ok, err := m.IsRemembered(ctx, "13800138000")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Remember(ctx, "13800138000"))
	ok, err = m.IsRemembered(ctx, "13800138000")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Forget(ctx, "13800138000"))
	ok, err = m.IsRemembered(ctx, "13800138000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryBackend_Sweep(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	s := &Session{ID: "sess_1", User: testUser(), CreatedAt: time.Now(), LastActivity: time.Now()}
	require.NoError(t, b.SaveSession(ctx, s, 5*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	removed, err := b.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = b.GetSession(ctx, "sess_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
