package auth

import (
	"context"
	"errors"
	"time"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/hashx"
	"github.com/passvault/passvault/internal/logging"
	"github.com/passvault/passvault/internal/server/config"
	"github.com/passvault/passvault/internal/server/requests"
	"github.com/passvault/passvault/internal/server/users"
	"github.com/passvault/passvault/internal/totp"
)

// LoginResult is the success payload of a login. The encryption salt rides
// along so the client can derive the vault key locally; the key itself
// never exists server-side.
type LoginResult struct {
	Token          string     `json:"token"`
	Username       string     `json:"username"`
	Role           users.Role `json:"role"`
	EncryptionSalt string     `json:"encryptionSalt"`

	RequirePasswordChange bool `json:"requirePasswordChange,omitempty"`
	RequireTotpSetup      bool `json:"requireTotpSetup,omitempty"`
}

// TotpSetupResult carries everything the client needs to enroll an
// authenticator app. QRDataURL may be empty when rendering failed; the URI
// and raw secret always suffice for manual entry.
type TotpSetupResult struct {
	Secret    string `json:"secret"`
	URI       string `json:"uri"`
	QRDataURL string `json:"qrCode,omitempty"`
}

// Service is the account state machine. It orchestrates credential
// verification, lockout bookkeeping, the onboarding status transitions and
// session issuance over the user store collaborator.
//
// All state lives in the store; a Service instance is safe for concurrent
// use and holds nothing mutable across calls.
type Service struct {
	repo   users.Repository
	totp   *totp.Engine
	tokens *TokenAuthority
	cfg    *config.Config
	logger logging.Logger

	// now is a clock seam for lockout tests. Nil means time.Now.
	now func() time.Time
}

func NewService(repo users.Repository, totpEngine *totp.Engine, tokens *TokenAuthority, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:   repo,
		totp:   totpEngine,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) timeNow() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Login runs the full credential evaluation for the given expected role.
//
// Order matters and is part of the contract:
//  1. cheap input guards — no store lookup for oversized input;
//  2. user fetch — unknown username and role mismatch both collapse into
//     ErrInvalidCredentials, so usernames cannot be enumerated;
//  3. lockout check — a locked account fails before any hash comparison;
//  4. credential check — the one-time password hash while the account is
//     pending first login, the real password hash otherwise;
//  5. second factor — only when required, enabled and the account is
//     active; missing and wrong codes return the same error.
//
// Success resets the failure counter and lockout deadline unconditionally
// and stamps the login time.
func (s *Service) Login(ctx context.Context, req requests.LoginRequest, role users.Role) (*LoginResult, error) {

	if err := req.Guard(); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if user.Role != role {
		return nil, common.ErrInvalidCredentials
	}

	now := s.timeNow()
	if user.Locked(now) {
		return nil, common.ErrAccountLocked
	}

	if user.Status == users.StatusPendingFirstLogin {
		if user.OneTimePasswordHash == nil {
			return nil, common.ErrInvalidCredentials
		}
		if !hashx.Verify(req.Password, *user.OneTimePasswordHash) {
			return nil, s.recordFailure(ctx, user, now)
		}
	} else {
		if !hashx.Verify(req.Password, user.PasswordHash) {
			return nil, s.recordFailure(ctx, user, now)
		}

		if s.cfg.Features.TotpRequired && user.Status == users.StatusActive && user.TotpEnabled {
			if req.TotpCode == "" {
				return nil, common.ErrInvalidTotp
			}
			if user.TotpSecret == nil || !s.totp.Verify(req.TotpCode, *user.TotpSecret) {
				if err := s.recordFailure(ctx, user, now); errors.Is(err, common.ErrorInternal) {
					return nil, err
				}
				return nil, common.ErrInvalidTotp
			}
		}
	}

	zero := 0
	if err := s.repo.Update(ctx, user.ID, users.Update{
		FailedLoginAttempts: &zero,
		ClearLockedUntil:    true,
		LastLoginAt:         &now,
	}); err != nil {
		return nil, common.ErrorInternal
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err)
		return nil, common.ErrorInternal
	}

	result := &LoginResult{
		Token:          token,
		Username:       user.Username,
		Role:           user.Role,
		EncryptionSalt: user.EncryptionSalt,
	}

	switch {
	case user.Status == users.StatusPendingFirstLogin:
		result.RequirePasswordChange = true
	case user.Status == users.StatusPendingTotpSetup && s.cfg.Features.TotpRequired:
		result.RequireTotpSetup = true
	}

	return result, nil
}

// recordFailure increments the failed-attempt counter and, once the count
// reaches the configured threshold, sets the lockout deadline in the same
// store update. Returns the credential error the caller should surface, or
// ErrorInternal when the bookkeeping write itself failed.
func (s *Service) recordFailure(ctx context.Context, user *users.User, now time.Time) error {
	attempts := user.FailedLoginAttempts + 1

	upd := users.Update{FailedLoginAttempts: &attempts}
	if attempts >= s.cfg.LockoutThreshold {
		deadline := now.Add(s.cfg.LockoutWindow)
		upd.LockedUntil = &deadline
		s.logger.Warn(ctx, "account locked", "username", user.Username, "until", deadline)
	}

	if err := s.repo.Update(ctx, user.ID, upd); err != nil {
		return common.ErrorInternal
	}

	return common.ErrInvalidCredentials
}

// ChangePassword sets the real password while the account is pending its
// first login. On success the one-time password hash is cleared, so it can
// never authenticate again, and the status advances to pending_totp_setup
// or straight to active depending on whether the second factor is required.
func (s *Service) ChangePassword(ctx context.Context, userID string, req requests.ChangePasswordRequest) error {

	if err := req.Guard(); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}

	if user.Status != users.StatusPendingFirstLogin {
		return common.ErrorForbidden
	}

	if policyErr := ValidatePassword(req.NewPassword, user.Username); policyErr != nil {
		return policyErr
	}

	hash, err := hashx.Hash(req.NewPassword)
	if err != nil {
		return common.ErrorInternal
	}

	next := users.StatusActive
	if s.cfg.Features.TotpRequired {
		next = users.StatusPendingTotpSetup
	}

	if err := s.repo.Update(ctx, user.ID, users.Update{
		PasswordHash:         &hash,
		Status:               &next,
		ClearOneTimePassword: true,
	}); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "password changed", "username", user.Username, "status", next)
	return nil
}

// TotpSetup generates and persists a fresh TOTP secret for an account in
// the pending_totp_setup state. The secret is stored disabled; only a
// successful TotpVerify activates it. A QR rendering failure is logged and
// tolerated; provisioning must not depend on it.
func (s *Service) TotpSetup(ctx context.Context, userID string) (*TotpSetupResult, error) {

	if !s.cfg.Features.TotpRequired {
		return nil, common.ErrorNotFound
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if user.Status != users.StatusPendingTotpSetup {
		return nil, common.ErrorForbidden
	}

	secret := s.totp.GenerateSecret()
	if err := s.repo.Update(ctx, user.ID, users.Update{TotpSecret: &secret}); err != nil {
		return nil, common.ErrorInternal
	}

	uri := s.totp.ProvisioningURI(user.Username, secret)

	result := &TotpSetupResult{Secret: secret, URI: uri}
	if qr, err := s.totp.RenderQRDataURL(uri); err == nil {
		result.QRDataURL = qr
	} else {
		s.logger.Warn(ctx, "QR rendering failed", "error", err)
	}

	return result, nil
}

// TotpVerify checks the first code from the authenticator app; on success
// the second factor is enabled and the account becomes active.
func (s *Service) TotpVerify(ctx context.Context, userID string, req requests.TotpVerifyRequest) error {

	if !s.cfg.Features.TotpRequired {
		return common.ErrorNotFound
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorUnauthorized
		}
		return common.ErrorInternal
	}

	if user.Status != users.StatusPendingTotpSetup || user.TotpSecret == nil {
		return common.ErrorForbidden
	}

	if !s.totp.Verify(req.TotpCode, *user.TotpSecret) {
		return common.ErrInvalidTotp
	}

	enabled := true
	active := users.StatusActive
	if err := s.repo.Update(ctx, user.ID, users.Update{
		TotpEnabled: &enabled,
		Status:      &active,
	}); err != nil {
		return common.ErrorInternal
	}

	s.logger.Info(ctx, "TOTP enabled", "username", user.Username)
	return nil
}
