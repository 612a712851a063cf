// Package auth implements the credential/session authority: the account
// state machine (first login, password change, TOTP enrollment, lockout)
// and the signed session tokens it mints.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/server/secrets"
	"github.com/passvault/passvault/internal/server/users"
)

// Claims is the self-contained session claim set. Nothing here is
// persisted server-side; the signature is the only thing that makes it
// trustworthy.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string       `json:"userId"`
	Username string       `json:"username"`
	Role     users.Role   `json:"role"`
	Status   users.Status `json:"status"`
}

// TokenAuthority issues and verifies session tokens. The signing key comes
// from the secrets collaborator; each Issue/Verify call performs exactly
// one key fetch, so a key change between processes cannot split a single
// verification.
type TokenAuthority struct {
	keys               secrets.Provider
	adminTokenValidity time.Duration
	userTokenValidity  time.Duration
}

func NewTokenAuthority(keys secrets.Provider, adminValidity, userValidity time.Duration) *TokenAuthority {
	return &TokenAuthority{
		keys:               keys,
		adminTokenValidity: adminValidity,
		userTokenValidity:  userValidity,
	}
}

// Issue signs a token for the user. Lifetime depends on role: admins get
// the longer configured validity, regular users the shorter one.
func (a *TokenAuthority) Issue(ctx context.Context, user *users.User) (string, error) {
	key, err := a.keys.SigningKey(ctx)
	if err != nil {
		return "", err
	}

	validity := a.userTokenValidity
	if user.Role == users.RoleAdmin {
		validity = a.adminTokenValidity
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Status:   user.Status,
	})

	return token.SignedString(key)
}

// Verify parses and validates a token, returning its claims. Expired
// tokens map to common.ErrTokenExpired, everything else that fails
// validation (bad signature, wrong key, malformed input) to
// common.ErrInvalidToken. Callers treat either as unauthenticated.
func (a *TokenAuthority) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	key, err := a.keys.SigningKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
