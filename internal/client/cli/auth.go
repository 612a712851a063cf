package cli

import (
	"context"
	"fmt"
	"os"

	clientvault "github.com/passvault/passvault/internal/client/vault"
	"github.com/passvault/passvault/internal/common"
	"github.com/passvault/passvault/internal/cryptox"
	"github.com/passvault/passvault/internal/server/auth"
	"github.com/passvault/passvault/internal/server/requests"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login walks the full session handshake: proof-of-work and credentials,
// then the onboarding detours (forced password change on first login, TOTP
// enrollment) until the account is fully active, and finally opens the
// vault with a locally derived key.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	result, err := a.login(ctx, username, string(password), "")
	if err != nil {
		return err
	}

	if result.RequirePasswordChange {
		newPassword, err := a.changePassword(ctx)
		if err != nil {
			return err
		}
		common.WipeByteArray(password)
		password = newPassword
		defer common.WipeByteArray(password)

		// the old token carries the pre-change status; start over
		a.api.Logout()
		if result, err = a.login(ctx, username, string(password), ""); err != nil {
			return err
		}
	}

	if result.RequireTotpSetup {
		if err := a.enrollTotp(ctx); err != nil {
			return err
		}

		a.api.Logout()
		code, err := getSimpleText(a.reader, "TOTP code", os.Stdout)
		if err != nil {
			return err
		}
		if result, err = a.login(ctx, username, string(password), code); err != nil {
			return err
		}
	}

	a.username = result.Username
	a.isAdmin = a.config.Admin

	if !a.isAdmin {
		codec, err := cryptox.DeriveKey(string(password), result.EncryptionSalt)
		if err != nil {
			return fmt.Errorf("key derivation: %w", err)
		}
		a.codec = codec

		if err := a.loadVault(ctx); err != nil {
			a.endSession()
			return err
		}
	}

	fmt.Printf("Logged in as %s\n", a.username)
	return nil
}

func (a *App) login(ctx context.Context, username, password, totpCode string) (*auth.LoginResult, error) {
	req := requests.LoginRequest{Username: username, Password: password, TotpCode: totpCode}
	return a.api.Login(ctx, req, a.config.Admin)
}

// changePassword prompts for the new password twice and submits it,
// re-prompting while the server rejects it against the policy.
func (a *App) changePassword(ctx context.Context) ([]byte, error) {
	fmt.Println("Your one-time password has expired. Choose a new password.")

	for {
		newPassword, err := getPassword("New password", os.Stdout)
		if err != nil {
			return nil, err
		}

		confirm, err := getPassword("Repeat new password", os.Stdout)
		if err != nil {
			common.WipeByteArray(newPassword)
			return nil, err
		}

		if string(newPassword) != string(confirm) {
			common.WipeByteArray(newPassword)
			common.WipeByteArray(confirm)
			fmt.Println("Passwords do not match, try again.")
			continue
		}
		common.WipeByteArray(confirm)

		if err := a.api.ChangePassword(ctx, string(newPassword)); err != nil {
			common.WipeByteArray(newPassword)
			fmt.Printf("Rejected: %s\n", err)
			continue
		}

		fmt.Println("Password changed.")
		return newPassword, nil
	}
}

// enrollTotp fetches a fresh secret and confirms the first code from the
// authenticator app.
func (a *App) enrollTotp(ctx context.Context) error {
	setup, err := a.api.TotpSetup(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Scan this secret into your authenticator app:")
	fmt.Printf("  secret: %s\n  uri:    %s\n", setup.Secret, setup.URI)

	for {
		code, err := getSimpleText(a.reader, "Enter the 6-digit code", os.Stdout)
		if err != nil {
			return err
		}
		if err := a.api.TotpVerify(ctx, code); err != nil {
			fmt.Printf("Rejected: %s\n", err)
			continue
		}
		fmt.Println("Two-factor authentication enabled.")
		return nil
	}
}

func (a *App) loadVault(ctx context.Context) error {
	blob, err := a.api.VaultGet(ctx)
	if err != nil {
		return err
	}

	v, err := clientvault.Open(a.codec, blob.EncryptedContent)
	if err != nil {
		return err
	}

	a.vault = v
	a.dirty = false
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if a.dirty {
		fmt.Println("Warning: unsaved changes discarded.")
	}
	a.endSession()
	fmt.Println("Logged out.")
	return nil
}
