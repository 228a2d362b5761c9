package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/quill/backend/internal/apperrors"
	"github.com/anonto42/quill/backend/internal/models"
	"github.com/anonto42/quill/backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGuard_IssueAndResolve(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", false)

	token, err := f.guard.Issue(alice.User)
	require.NoError(t, err)

	id, err := f.guard.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, id.UserID)
	assert.False(t, id.IsAdmin)
	assert.Equal(t, "alice", id.User.Username)
}

func TestAuthGuard_AdminFlagReadFromStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice", false)

	token, err := f.guard.Issue(alice.User)
	require.NoError(t, err)

	require.NoError(t, f.users.SetAdmin(ctx, alice.UserID, true))
	id, err := f.guard.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)
	assert.NoError(t, RequireAdmin(id))

	require.NoError(t, f.users.SetAdmin(ctx, alice.UserID, false))
	id, err = f.guard.Resolve(ctx, token)
	require.NoError(t, err)
	assert.ErrorIs(t, RequireAdmin(id), apperrors.ErrForbidden)
}

func TestAuthGuard_Failures(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", false)

	expiredGuard := NewAuthGuard(config.JWTConfig{Secret: "test-secret", Issuer: "quill-test", Expiry: time.Hour}, f.users)
	expiredGuard.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredGuard.Issue(alice.User)
	require.NoError(t, err)

	otherKey := NewAuthGuard(config.JWTConfig{Secret: "other-secret", Issuer: "quill-test", Expiry: time.Hour}, f.users)
	forged, err := otherKey.Issue(alice.User)
	require.NoError(t, err)

	wrongMethod, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.JwtCustomClaims{
		UserID: alice.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quill-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	ghost, err := f.guard.Issue(&models.User{ID: 9999})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		kind  apperrors.Kind
	}{
		{"missing", "", apperrors.KindUnauthenticated},
		{"malformed", "not-a-jwt", apperrors.KindUnauthenticated},
		{"expired", expired, apperrors.KindExpired},
		{"bad signature", forged, apperrors.KindInvalid},
		{"wrong signing method", wrongMethod, apperrors.KindInvalid},
		{"user no longer exists", ghost, apperrors.KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.guard.Resolve(context.Background(), tt.token)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}
