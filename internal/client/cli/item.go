package cli

import (
	"context"
	"fmt"
	"os"
)

func (a *App) requireVault() bool {
	if a.vault == nil {
		fmt.Println("No open vault. Log in as a regular user first.")
		return false
	}
	return true
}

// List prints a one-line summary per entry.
func (a *App) List(ctx context.Context) error {
	if !a.requireVault() {
		return nil
	}

	if len(a.vault.Entries) == 0 {
		fmt.Println("Vault is empty.")
		return nil
	}

	for _, e := range a.vault.Entries {
		fmt.Printf("%-36s  %-20s  %s\n", e.ID, e.Title, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// Show prints a single entry, password included.
func (a *App) Show(ctx context.Context) error {
	if !a.requireVault() {
		return nil
	}

	key, err := getSimpleText(a.reader, "Entry ID or title", os.Stdout)
	if err != nil {
		return err
	}

	entry := a.vault.Find(key)
	if entry == nil {
		fmt.Println("No such entry (or the title is ambiguous).")
		return nil
	}

	fmt.Printf("Title:    %s\n", entry.Title)
	fmt.Printf("Username: %s\n", entry.Username)
	fmt.Printf("Password: %s\n", entry.Password)
	if entry.Notes != "" {
		fmt.Printf("Notes:\n%s\n", entry.Notes)
	}
	return nil
}

// Add prompts for a new entry and appends it to the working vault. Nothing
// is uploaded until Save.
func (a *App) Add(ctx context.Context) error {
	if !a.requireVault() {
		return nil
	}

	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Username (optional)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword("Secret", os.Stdout)
	if err != nil {
		return err
	}
	notes, err := GetMultiline(a.reader, "Notes (optional)", os.Stdout)
	if err != nil {
		return err
	}

	a.vault.Add(title, username, string(password), notes)
	a.dirty = true
	fmt.Println("Added. Remember to 'save'.")
	return nil
}

// Delete removes an entry from the working vault.
func (a *App) Delete(ctx context.Context) error {
	if !a.requireVault() {
		return nil
	}

	key, err := getSimpleText(a.reader, "Entry ID or title", os.Stdout)
	if err != nil {
		return err
	}

	if !a.vault.Delete(key) {
		fmt.Println("No such entry (or the title is ambiguous).")
		return nil
	}

	a.dirty = true
	fmt.Println("Deleted. Remember to 'save'.")
	return nil
}

// Save seals the working vault and uploads it.
func (a *App) Save(ctx context.Context) error {
	if !a.requireVault() {
		return nil
	}

	blob, err := a.vault.Seal(a.codec)
	if err != nil {
		return err
	}

	result, err := a.api.VaultPut(ctx, blob)
	if err != nil {
		fmt.Printf("Upload failed: %s\n", err)
		return err
	}

	a.dirty = false
	fmt.Printf("Saved (%s).\n", result.LastModified.Format("2006-01-02 15:04:05"))
	return nil
}
