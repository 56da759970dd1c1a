package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func sampleUser(id, phone, username string) *model.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.User{
		ID:           id,
		Username:     username,
		Phone:        phone,
		PasswordHash: "$2a$12$fakehash",
		Status:       model.StatusActive,
		Role:         model.RoleCustomer,
		Points:       100,
		VIPLevel:     1,
		Preferences:  model.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	user := sampleUser("user_1", "13800138000", "alice")
	email := "alice@example.com"
	user.Email = &email
	require.NoError(t, repo.Create(ctx, user))

	t.Run("By ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, "user_1")
		require.NoError(t, err)
		assert.Equal(t, "alice", found.Username)
		assert.Equal(t, model.StatusActive, found.Status)
	})

	t.Run("By phone", func(t *testing.T) {
		found, err := repo.FindByPhone(ctx, "13800138000")
		require.NoError(t, err)
		assert.Equal(t, "user_1", found.ID)
	})

	t.Run("By username", func(t *testing.T) {
		found, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "user_1", found.ID)
	})

	t.Run("By email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user_1", found.ID)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "user_nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserRepository_FindByAccount(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	user := sampleUser("user_1", "13800138000", "alice")
	email := "alice@example.com"
	user.Email = &email
	require.NoError(t, repo.Create(ctx, user))

	for _, account := range []string{"13800138000", "alice", "alice@example.com"} {
		found, err := repo.FindByAccount(ctx, account)
		require.NoError(t, err, account)
		assert.Equal(t, "user_1", found.ID)
	}

	_, err := repo.FindByAccount(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUserRepository_UniqueConstraints(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleUser("user_1", "13800138000", "alice")))

	err := repo.Create(ctx, sampleUser("user_2", "13800138000", "bob"))
	assert.True(t, store.IsDuplicate(err))

	err = repo.Create(ctx, sampleUser("user_3", "13900139000", "alice"))
	assert.True(t, store.IsDuplicate(err))
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(newTestStore(t))
	ctx := context.Background()

	user := sampleUser("user_1", "13800138000", "alice")
	require.NoError(t, repo.Create(ctx, user))

	user.Points = 250
	user.VIPLevel = 2
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, 250, found.Points)
	assert.Equal(t, 2, found.VIPLevel)
}

func TestActivityRepository_TrimToCap(t *testing.T) {
	s := newTestStore(t)
	repo := NewActivityRepository(s)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Append(ctx, &model.Activity{
			ID:        "act_" + string(rune('a'+i)),
			UserID:    "user_1",
			Action:    model.ActivityLogin,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	removed, err := repo.TrimToCap(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	remaining, err := repo.FindByUser(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, remaining, 6)
	// Newest entries survive
	assert.Equal(t, "act_j", remaining[0].ID)
	assert.Equal(t, "act_e", remaining[5].ID)
}
