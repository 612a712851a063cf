package admin

import (
	"context"
	"errors"
	"time"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/logging"
	"github.com/passvault/passvault/internal/server/requests"
	"github.com/passvault/passvault/internal/server/users"
	"github.com/passvault/passvault/internal/server/vault"
)

type CreatedUser struct {
	UserID          string `json:"userId"`
	Username        string `json:"username"`
	OneTimePassword string `json:"oneTimePassword"`
}

type UserSummary struct {
	UserID         string       `json:"userId"`
	Username       string       `json:"username"`
	Status         users.Status `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	LastLoginAt    *time.Time   `json:"lastLoginAt"`
	VaultSizeBytes int64        `json:"vaultSizeBytes"`
}

type Service struct {
	repo   users.Repository
	vault  *vault.Service
	logger logging.Logger
}

func NewService(repo users.Repository, vaultService *vault.Service, logger logging.Logger) *Service {
	return &Service{repo: repo, vault: vaultService, logger: logger}
}

// CreateInvitation provisions a regular user account. The one-time
// password is returned exactly once, for out-of-band delivery; only its
// hash is stored. An empty vault is seeded immediately so the first login
// finds a readable (if empty) vault.
func (s *Service) CreateInvitation(ctx context.Context, req requests.CreateUserRequest, adminID string) (*CreatedUser, error) {

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, otp, err := NewInvitedUser(req.Username, users.RoleUser, &adminID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if _, err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, common.ErrorInternal
	}

	if err := s.vault.Seed(ctx, user.ID); err != nil {
		s.logger.Error(ctx, "vault seeding failed", "username", user.Username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user invited", "username", user.Username, "by", adminID)

	return &CreatedUser{
		UserID:          user.ID,
		Username:        user.Username,
		OneTimePassword: otp,
	}, nil
}

// ListUsers returns the admin overview of regular accounts, including each
// user's current vault size. Admin accounts are excluded.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, common.ErrorInternal
	}

	summaries := make([]UserSummary, 0, len(all))
	for _, u := range all {
		if u.Role != users.RoleUser {
			continue
		}

		size, err := s.vault.Size(ctx, u.ID)
		if err != nil {
			return nil, common.ErrorInternal
		}

		summaries = append(summaries, UserSummary{
			UserID:         u.ID,
			Username:       u.Username,
			Status:         u.Status,
			CreatedAt:      u.CreatedAt,
			LastLoginAt:    u.LastLoginAt,
			VaultSizeBytes: size,
		})
	}

	return summaries, nil
}
