package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/model"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/events"
	"github.com/wuwumall/wuwumall-backend/internal/session"
	"github.com/wuwumall/wuwumall-backend/internal/store"
)

type authFixture struct {
	service  AuthService
	users    repository.UserRepository
	addrs    repository.AddressRepository
	acts     repository.ActivityRepository
	sessions *session.Manager
}

func setupAuthServiceTest(t *testing.T) *authFixture {
	t.Helper()

	s, err := store.OpenFileStore(t.TempDir())
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(s)
	addressRepo := repository.NewAddressRepository(s)
	activityRepo := repository.NewActivityRepository(s)
	bus := events.NewBus()
	sessions := session.NewManager(session.NewMemoryBackend(), &config.SessionConfig{
		IdleTimeout:   time.Hour,
		LockThreshold: 5,
		LockWindow:    30 * time.Minute,
		RememberTTL:   720 * time.Hour,
	}, bus)

	return &authFixture{
		service:  NewAuthService(userRepo, addressRepo, activityRepo, sessions, bus),
		users:    userRepo,
		addrs:    addressRepo,
		acts:     activityRepo,
		sessions: sessions,
	}
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Phone:    "13800138000",
		Username: "alice",
		Password: "secret123",
	}
}

func TestAuthService_Register(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{
			name:   "Valid registration",
			mutate: func(in *RegisterInput) {},
		},
		{
			name:    "Missing fields",
			mutate:  func(in *RegisterInput) { in.Password = "" },
			wantErr: ErrIncompleteInput,
		},
		{
			name:    "Bad phone",
			mutate:  func(in *RegisterInput) { in.Phone = "12345" },
			wantErr: ErrInvalidPhone,
		},
		{
			name:    "Short username",
			mutate:  func(in *RegisterInput) { in.Phone = "13900139000"; in.Username = "ab" },
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "Short password",
			mutate:  func(in *RegisterInput) { in.Phone = "13900139000"; in.Username = "bob"; in.Password = "123" },
			wantErr: ErrInvalidPassword,
		},
		{
			name:    "Bad email",
			mutate:  func(in *RegisterInput) { in.Phone = "13900139000"; in.Username = "bob"; in.Email = "not-an-email" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "Duplicate phone",
			mutate:  func(in *RegisterInput) { in.Username = "bob" },
			wantErr: ErrPhoneExists,
		},
		{
			name:    "Duplicate username",
			mutate:  func(in *RegisterInput) { in.Phone = "13900139000" },
			wantErr: ErrUsernameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegistration()
			tt.mutate(&input)

			user, err := f.service.Register(ctx, input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, 100, user.Points)
			assert.Equal(t, 1, user.VIPLevel)
			assert.Equal(t, model.StatusActive, user.Status)
			assert.Equal(t, model.RoleCustomer, user.Role)
			assert.Equal(t, "light", user.Preferences.Theme)
			assert.NotEqual(t, "secret123", user.PasswordHash)
		})
	}
}

func TestAuthService_Register_CreatesDefaultAddress(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	addresses, err := f.addrs.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.True(t, addresses[0].IsDefault)
	assert.Equal(t, "alice", addresses[0].Recipient)
	assert.Equal(t, "请选择", addresses[0].Province)
}

func TestAuthService_Register_SignsInTheNewAccount(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	// Registration runs the full login path for the new account
	assert.NotNil(t, user.LastLogin)

	remembered, err := f.sessions.IsRemembered(ctx, user.Phone)
	require.NoError(t, err)
	assert.True(t, remembered)

	activities, err := f.acts.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(activities))
	for _, a := range activities {
		actions = append(actions, a.Action)
	}
	assert.Contains(t, actions, model.ActivityRegister)
	assert.Contains(t, actions, model.ActivityLogin)
}

func TestAuthService_Register_CJKUsernameLength(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	// 7 characters, 21 bytes: inside the 3-20 character window
	input := validRegistration()
	input.Username = "七个汉字的用户名"
	user, err := f.service.Register(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "七个汉字的用户名", user.Username)

	// 2 characters stay too short even at 6 bytes
	input = validRegistration()
	input.Phone = "13900139000"
	input.Username = "小明"
	_, err = f.service.Register(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestAuthService_Login(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	registered, err := f.service.Register(ctx, RegisterInput{
		Phone:    "13800138000",
		Username: "alice",
		Password: "secret123",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	t.Run("Login by phone", func(t *testing.T) {
		user, err := f.service.Login(ctx, LoginInput{Account: "13800138000", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotNil(t, user.LastLogin)
	})

	t.Run("Login by username", func(t *testing.T) {
		user, err := f.service.Login(ctx, LoginInput{Account: "alice", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("Login by email", func(t *testing.T) {
		user, err := f.service.Login(ctx, LoginInput{Account: "alice@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("Missing credentials", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Account: "alice"})
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})

	t.Run("Unknown account", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Account: "nobody", Password: "secret123"})
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := f.service.Login(ctx, LoginInput{Account: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}

func TestAuthService_Login_LocksAfterRepeatedFailures(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := f.service.Login(ctx, LoginInput{Account: "alice", Password: "wrong"})
		assert.ErrorIs(t, err, ErrWrongPassword)
	}

	// Fifth failure trips the lock
	_, err = f.service.Login(ctx, LoginInput{Account: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Even the correct password is refused now
	_, err = f.service.Login(ctx, LoginInput{Account: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestAuthService_Login_LockCountsAcrossIdentifiers(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, RegisterInput{
		Phone:    "13800138000",
		Username: "alice",
		Password: "secret123",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)

	// Failures against phone, username and email land on one counter
	accounts := []string{"13800138000", "alice", "alice@example.com", "13800138000"}
	for _, account := range accounts {
		_, err := f.service.Login(ctx, LoginInput{Account: account, Password: "wrong"})
		assert.ErrorIs(t, err, ErrWrongPassword)
	}

	_, err = f.service.Login(ctx, LoginInput{Account: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAccountLocked)

	// The lockout leaves an audit record
	activities, err := f.acts.FindByUser(ctx, user.ID)
	require.NoError(t, err)
	locked := false
	for _, a := range activities {
		if a.Action == model.ActivityLock {
			locked = true
		}
	}
	assert.True(t, locked)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	require.NoError(t, f.service.ResetPassword(ctx, "alice", "newpass456", ClientMeta{}))

	_, err = f.service.Login(ctx, LoginInput{Account: "alice", Password: "secret123"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	user, err := f.service.Login(ctx, LoginInput{Account: "alice", Password: "newpass456"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, user.Status)
}

func TestAuthService_ResetPassword_UnlocksAccount(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		f.service.Login(ctx, LoginInput{Account: "alice", Password: "wrong"})
	}

	require.NoError(t, f.service.ResetPassword(ctx, "alice", "newpass456", ClientMeta{}))

	user, err := f.service.Login(ctx, LoginInput{Account: "alice", Password: "newpass456"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, user.Status)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	f := setupAuthServiceTest(t)
	ctx := context.Background()

	user, err := f.service.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("Nothing to update", func(t *testing.T) {
		_, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdates{})
		assert.ErrorIs(t, err, ErrNothingToUpdate)
	})

	t.Run("Update username and preferences", func(t *testing.T) {
		newName := "alice2"
		prefs := model.Preferences{Theme: "dark", Language: "zh-CN", Notifications: false}
		updated, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdates{
			Username:    &newName,
			Preferences: &prefs,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)
		assert.Equal(t, "dark", updated.Preferences.Theme)
	})

	t.Run("Invalid username", func(t *testing.T) {
		bad := "x"
		_, err := f.service.UpdateProfile(ctx, user.ID, ProfileUpdates{Username: &bad})
		assert.ErrorIs(t, err, ErrInvalidUsername)
	})
}

func TestAuthService_CheckPermission(t *testing.T) {
	f := setupAuthServiceTest(t)

	customer := &model.PublicUser{Role: model.RoleCustomer, VIPLevel: 1}
	vip := &model.PublicUser{Role: model.RoleCustomer, VIPLevel: 3}
	seller := &model.PublicUser{Role: model.RoleSeller, VIPLevel: 1}
	admin := &model.PublicUser{Role: model.RoleAdmin, VIPLevel: 1}

	tests := []struct {
		name   string
		user   *model.PublicUser
		action string
		want   bool
	}{
		{"Anonymous denied", nil, "view_products", false},
		{"Customer views products", customer, "view_products", true},
		{"Customer places order", customer, "place_order", true},
		{"Customer cannot manage products", customer, "manage_products", false},
		{"VIP3 manages products", vip, "manage_products", true},
		{"Seller manages products", seller, "manage_products", true},
		{"Seller views all orders", seller, "view_all_orders", true},
		{"Seller cannot manage users", seller, "manage_users", false},
		{"Admin manages users", admin, "manage_users", true},
		{"Unknown action allowed", customer, "rate_product", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.service.CheckPermission(tt.user, tt.action))
		})
	}
}
