package vault

import (
	"context"
	"errors"
	"time"

	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/cryptox"
	"github.com/passvault/passvault/internal/server/config"
	"github.com/passvault/passvault/internal/server/requests"
	"github.com/passvault/passvault/internal/server/users"
)

// Algorithm identifies the client-side envelope scheme recorded with
// downloads, so an offline recovery tool knows how to re-derive the key.
const Algorithm = "argon2id+aes-256-gcm"

type GetResult struct {
	EncryptedContent string    `json:"encryptedContent"`
	LastModified     time.Time `json:"lastModified"`
}

type PutResult struct {
	LastModified time.Time `json:"lastModified"`
}

// Parameters are the key-derivation and cipher constants the blob was
// sealed with.
type Parameters struct {
	KDFMemory   int `json:"kdfMemory"`
	KDFTime     int `json:"kdfTime"`
	KDFParallel int `json:"kdfParallelism"`
	KeyBits     int `json:"keyBits"`
	IVBits      int `json:"ivBits"`
}

// DownloadResult is a self-contained vault export: ciphertext plus
// everything needed to decrypt it offline except the password.
type DownloadResult struct {
	EncryptedContent string     `json:"encryptedContent"`
	EncryptionSalt   string     `json:"encryptionSalt"`
	Algorithm        string     `json:"algorithm"`
	Parameters       Parameters `json:"parameters"`
	LastModified     time.Time  `json:"lastModified"`
	Username         string     `json:"username"`
}

// Service owns vault blob access. Ownership is exclusive: callers pass the
// authenticated user's id, never one from request content.
type Service struct {
	store Store
	repo  users.Repository
	cfg   *config.Config
}

func NewService(store Store, repo users.Repository, cfg *config.Config) *Service {
	return &Service{store: store, repo: repo, cfg: cfg}
}

// Get returns the user's vault. A never-written vault reads as empty
// rather than an error, so a fresh account opens cleanly.
func (s *Service) Get(ctx context.Context, userID string) (*GetResult, error) {
	file, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &GetResult{EncryptedContent: "", LastModified: time.Now().UTC()}, nil
		}
		return nil, common.ErrorInternal
	}
	return &GetResult{EncryptedContent: file.Content, LastModified: file.LastModified}, nil
}

// Put stores a new ciphertext after enforcing the size cap.
func (s *Service) Put(ctx context.Context, userID string, req requests.VaultPutRequest) (*PutResult, error) {
	if int64(len(req.EncryptedContent)) > s.cfg.MaxVaultBytes {
		return nil, common.ErrFileTooLarge
	}

	lastModified, err := s.store.Put(ctx, userID, req.EncryptedContent)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &PutResult{LastModified: lastModified}, nil
}

// Download assembles the recovery export for the user.
func (s *Service) Download(ctx context.Context, userID string) (*DownloadResult, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	result := &DownloadResult{
		EncryptionSalt: user.EncryptionSalt,
		Algorithm:      Algorithm,
		Parameters: Parameters{
			KDFMemory:   cryptox.KDFMemory,
			KDFTime:     cryptox.KDFTime,
			KDFParallel: cryptox.KDFThreads,
			KeyBits:     cryptox.KeyBytes * 8,
			IVBits:      cryptox.IVBytes * 8,
		},
		LastModified: time.Now().UTC(),
		Username:     user.Username,
	}

	file, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
		return result, nil
	}

	result.EncryptedContent = file.Content
	result.LastModified = file.LastModified
	return result, nil
}

// Seed writes the initial empty vault for a freshly invited user.
func (s *Service) Seed(ctx context.Context, userID string) error {
	_, err := s.store.Put(ctx, userID, "")
	return err
}

// Size reports the stored blob size in bytes, zero for absent vaults.
func (s *Service) Size(ctx context.Context, userID string) (int64, error) {
	size, err := s.store.Size(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return size, nil
}
