package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateSessionToken(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		userID    string
		role      string
		expiry    time.Duration
	}{
		{
			name:      "Customer token",
			sessionID: "sess_abc123",
			userID:    "user_abc123",
			role:      "customer",
			expiry:    24 * time.Hour,
		},
		{
			name:      "Seller token",
			sessionID: "sess_def456",
			userID:    "user_def456",
			role:      "seller",
			expiry:    24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateSessionToken(tt.sessionID, tt.userID, tt.role, testSecret, tt.expiry)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Contains(t, token, ".")
		})
	}
}

func TestValidateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken("sess_abc123", "user_abc123", "customer", testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("Valid token", func(t *testing.T) {
		claims, err := ValidateSessionToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "sess_abc123", claims.SessionID)
		assert.Equal(t, "user_abc123", claims.UserID)
		assert.Equal(t, "customer", claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		claims, err := ValidateSessionToken(token, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("Garbage token", func(t *testing.T) {
		claims, err := ValidateSessionToken("not-a-token", testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("Expired token", func(t *testing.T) {
		expired, err := GenerateSessionToken("sess_old", "user_old", "customer", testSecret, -time.Minute)
		require.NoError(t, err)

		claims, err := ValidateSessionToken(expired, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Nil(t, claims)
	})
}
