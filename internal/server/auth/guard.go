package auth

import (
	"context"
	"strings"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/server/users"
)

// ExtractBearer pulls the raw token out of an Authorization header value.
// Only the standard "Bearer <token>" format is accepted; anything else
// returns the empty string.
func ExtractBearer(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// Authenticate verifies the Authorization header and returns the session
// claims. A missing, malformed, expired or wrongly-signed token uniformly
// yields common.ErrorUnauthorized; callers convert that into an
// unauthenticated response without further detail.
func (a *TokenAuthority) Authenticate(ctx context.Context, authorizationHeader string) (*Claims, error) {
	token := ExtractBearer(authorizationHeader)
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := a.Verify(ctx, token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	return claims, nil
}

// RequireRole gates an authenticated caller on role. A valid session with
// the wrong role gets ErrorForbidden rather than ErrorUnauthorized, so the
// client can tell "log in first" apart from "not yours".
func RequireRole(claims *Claims, role users.Role) error {
	if claims.Role != role {
		return common.ErrorForbidden
	}
	return nil
}
