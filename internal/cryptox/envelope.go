// Package cryptox implements the client-resident envelope encryption codec.
// The vault key is derived from the user's password and their account salt
// with a memory-hard KDF, lives only in process memory, and is never
// serialized or transmitted. The server only ever sees the ciphertext this
// package produces.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/passvault/passvault/internal/common"
)

// Argon2id parameters. These must match the parameters recorded alongside
// stored vaults; changing them silently makes existing vaults underivable.
const (
	KDFTime    = 3
	KDFMemory  = 64 * 1024 // KiB, i.e. 64 MiB
	KDFThreads = 4
	KeyBytes   = 32

	// IVBytes is the AES-GCM nonce length, prepended to every ciphertext.
	IVBytes = 12

	// SaltBytes is the per-account encryption salt length. The salt is
	// generated once at account creation and never mutated.
	SaltBytes = 32
)

var (
	ErrKeyCleared  = errors.New("encryption key not derived")
	ErrInvalidBlob = errors.New("invalid encrypted blob")
)

// Codec holds a derived vault key. It is a scoped resource: acquired via
// DeriveKey on login, released via ClearKey on logout. Every operation on a
// cleared codec fails closed.
type Codec struct {
	key []byte
}

// DeriveKey runs argon2id over (password, salt) and returns a codec holding
// the resulting 256-bit key. The salt arrives base64-encoded, as the server
// stores and serves it; both standard and URL-safe alphabets are accepted.
func DeriveKey(password string, saltBase64 string) (*Codec, error) {
	salt, err := decodeBase64(saltBase64)
	if err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(password), salt, KDFTime, KDFMemory, KDFThreads, KeyBytes)
	return &Codec{key: key}, nil
}

// Encrypt seals the plaintext with AES-256-GCM under a fresh random 96-bit
// IV and returns base64(iv || ciphertext||tag). Two calls with identical
// plaintext produce different blobs.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	iv := make([]byte, IVBytes)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	sealed := aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens base64(iv || ciphertext||tag) and returns the plaintext.
// Any tampering fails the GCM tag check and returns an error; no partial
// output is ever produced.
func (c *Codec) Decrypt(blob string) (string, error) {
	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	combined, err := decodeBase64(blob)
	if err != nil {
		return "", ErrInvalidBlob
	}
	if len(combined) < IVBytes {
		return "", ErrInvalidBlob
	}

	iv, ciphertext := combined[:IVBytes], combined[IVBytes:]
	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// HasKey reports whether the codec currently holds a derived key.
func (c *Codec) HasKey() bool {
	return c.key != nil
}

// ClearKey zeroes and drops the key material. Best-effort: the runtime may
// have copied the slice contents during its lifetime.
func (c *Codec) ClearKey() {
	common.WipeByteArray(c.key)
	c.key = nil
}

func (c *Codec) aead() (cipher.AEAD, error) {
	if c.key == nil {
		return nil, ErrKeyCleared
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// decodeBase64 accepts standard or URL-safe base64, padded or not.
func decodeBase64(s string) ([]byte, error) {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(s)
	normalized = strings.TrimRight(normalized, "=")
	return base64.StdEncoding.WithPadding(base64.NoPadding).DecodeString(normalized)
}
