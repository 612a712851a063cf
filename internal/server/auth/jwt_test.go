package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/server/secrets"
	"github.com/passvault/passvault/internal/server/users"
)

func testUser(role users.Role) *users.User {
	return &users.User{
		ID:       "user-1",
		Username: "alice",
		Role:     role,
		Status:   users.StatusActive,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	authority := NewTokenAuthority(&secrets.Static{Key: []byte("test-signing-key")}, 24*time.Hour, 30*time.Minute)
	ctx := context.Background()

	token, err := authority.Issue(ctx, testUser(users.RoleUser))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := authority.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, users.RoleUser, claims.Role)
	assert.Equal(t, users.StatusActive, claims.Status)
}

func TestTokenValidityByRole(t *testing.T) {
	authority := NewTokenAuthority(&secrets.Static{Key: []byte("test-signing-key")}, 24*time.Hour, 30*time.Minute)
	ctx := context.Background()

	adminToken, err := authority.Issue(ctx, testUser(users.RoleAdmin))
	require.NoError(t, err)
	userToken, err := authority.Issue(ctx, testUser(users.RoleUser))
	require.NoError(t, err)

	adminClaims, err := authority.Verify(ctx, adminToken)
	require.NoError(t, err)
	userClaims, err := authority.Verify(ctx, userToken)
	require.NoError(t, err)

	adminTTL := time.Until(adminClaims.ExpiresAt.Time)
	userTTL := time.Until(userClaims.ExpiresAt.Time)
	assert.Greater(t, adminTTL, 23*time.Hour)
	assert.Less(t, userTTL, time.Hour)
}

func TestVerifyWrongKey(t *testing.T) {
	ctx := context.Background()
	issuer := NewTokenAuthority(&secrets.Static{Key: []byte("key-one")}, time.Hour, time.Hour)
	verifier := NewTokenAuthority(&secrets.Static{Key: []byte("key-two")}, time.Hour, time.Hour)

	token, err := issuer.Issue(ctx, testUser(users.RoleUser))
	require.NoError(t, err)

	_, err = verifier.Verify(ctx, token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	ctx := context.Background()
	authority := NewTokenAuthority(&secrets.Static{Key: []byte("test-signing-key")}, -time.Minute, -time.Minute)

	token, err := authority.Issue(ctx, testUser(users.RoleUser))
	require.NoError(t, err)

	_, err = authority.Verify(ctx, token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerifyGarbage(t *testing.T) {
	authority := NewTokenAuthority(&secrets.Static{Key: []byte("test-signing-key")}, time.Hour, time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := authority.Verify(context.Background(), token)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", token)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	authority := NewTokenAuthority(&secrets.Static{Key: []byte("test-signing-key")}, time.Hour, time.Hour)

	token, err := authority.Issue(ctx, testUser(users.RoleAdmin))
	require.NoError(t, err)

	claims, err := authority.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, users.RoleAdmin, claims.Role)

	for _, header := range []string{"", "Bearer", token, "Basic " + token, "Bearer bad.token.here"} {
		_, err := authority.Authenticate(ctx, header)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, "header %q", header)
	}
}

func TestRequireRole(t *testing.T) {
	claims := &Claims{Role: users.RoleUser}
	assert.NoError(t, RequireRole(claims, users.RoleUser))
	assert.ErrorIs(t, RequireRole(claims, users.RoleAdmin), common.ErrorForbidden)
}
