// Package vault is the client-side plaintext model of the secret vault:
// the entries the user edits locally, sealed into the server's opaque blob
// with the envelope codec before anything leaves the machine.
package vault

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/passvault/passvault/internal/cryptox"
)

// Entry is one stored secret.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username,omitempty"`
	Password  string    `json:"password,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Vault is the decrypted working copy. It only ever exists client-side.
type Vault struct {
	Entries []Entry `json:"entries"`
}

// Open decrypts a server blob into a working vault. An empty blob is a
// fresh vault, not an error.
func Open(codec *cryptox.Codec, blob string) (*Vault, error) {
	if blob == "" {
		return &Vault{}, nil
	}

	plaintext, err := codec.Decrypt(blob)
	if err != nil {
		return nil, fmt.Errorf("vault decrypt: %w", err)
	}

	v := &Vault{}
	if err := json.Unmarshal([]byte(plaintext), v); err != nil {
		return nil, fmt.Errorf("vault parse: %w", err)
	}
	return v, nil
}

// Seal serializes and encrypts the vault for upload.
func (v *Vault) Seal(codec *cryptox.Codec) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return codec.Encrypt(string(plaintext))
}

// Add appends a new entry and returns it.
func (v *Vault) Add(title, username, password, notes string) *Entry {
	v.Entries = append(v.Entries, Entry{
		ID:        uuid.NewString(),
		Title:     title,
		Username:  username,
		Password:  password,
		Notes:     notes,
		UpdatedAt: time.Now().UTC(),
	})
	return &v.Entries[len(v.Entries)-1]
}

// Find returns the entry whose ID or title matches, nil when absent. Title
// matching requires uniqueness to avoid silently picking the wrong secret.
func (v *Vault) Find(key string) *Entry {
	var byTitle *Entry
	titleMatches := 0
	for i := range v.Entries {
		if v.Entries[i].ID == key {
			return &v.Entries[i]
		}
		if v.Entries[i].Title == key {
			byTitle = &v.Entries[i]
			titleMatches++
		}
	}
	if titleMatches == 1 {
		return byTitle
	}
	return nil
}

// Delete removes the entry matching key, reporting whether anything was
// removed.
func (v *Vault) Delete(key string) bool {
	entry := v.Find(key)
	if entry == nil {
		return false
	}
	for i := range v.Entries {
		if v.Entries[i].ID == entry.ID {
			v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
			return true
		}
	}
	return false
}
