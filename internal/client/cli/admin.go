package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) requireAdmin() bool {
	if !a.isLoggedIn() || !a.isAdmin {
		fmt.Println("Log in on the admin surface first (-admin).")
		return false
	}
	return true
}

// Invite creates a new user account and prints the one-time password. This
// is the only moment it is ever visible; pass it to the user out of band.
func (a *App) Invite(ctx context.Context) error {
	if !a.requireAdmin() {
		return nil
	}

	username, err := getSimpleText(a.reader, "New username", os.Stdout)
	if err != nil {
		return err
	}

	created, err := a.api.CreateUser(ctx, username)
	if err != nil {
		fmt.Printf("Failed: %s\n", err)
		return err
	}

	fmt.Printf("User %s created.\n", created.Username)
	fmt.Printf("One-time password (shown once): %s\n", created.OneTimePassword)
	return nil
}

// Users prints the account overview.
func (a *App) Users(ctx context.Context) error {
	if !a.requireAdmin() {
		return nil
	}

	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Println("No users yet.")
		return nil
	}

	fmt.Printf("%-20s %-22s %-12s %s\n", "USERNAME", "STATUS", "VAULT BYTES", "LAST LOGIN")
	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-20s %-22s %-12d %s\n", u.Username, u.Status, u.VaultSizeBytes, lastLogin)
	}
	return nil
}
