package cryptox

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/passvault/passvault/internal/common"
)

func testCodec(t *testing.T) *Codec {
	t.Helper()

	salt := base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(SaltBytes))
	c, err := DeriveKey("Tr0ub4dor&3!x", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	return c
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	for _, plaintext := range []string{
		"",
		"hello",
		`{"entries":[{"name":"email","password":"hunter2"}]}`,
		"ünïcødé §ecret ✓",
	} {
		blob, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) error: %v", plaintext, err)
		}
		got, err := c.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != plaintext {
			t.Fatalf("round trip: got %q want %q", got, plaintext)
		}
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	a, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	b, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if a == b {
		t.Fatalf("two encryptions of the same plaintext are identical")
	}

	for _, blob := range []string{a, b} {
		got, err := c.Decrypt(blob)
		if err != nil || got != "same plaintext" {
			t.Fatalf("Decrypt(%q): got %q, %v", blob, got, err)
		}
	}
}

func TestDecrypt_TamperFailsHard(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	blob, err := c.Encrypt("sensitive")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i := range raw {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01

		if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(mutated)); err == nil {
			t.Fatalf("flipping byte %d did not fail decryption", i)
		}
	}
}

func TestDecrypt_MalformedBlob(t *testing.T) {
	t.Parallel()

	c := testCodec(t)

	if _, err := c.Decrypt("!!not base64!!"); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("garbage input: got %v, want ErrInvalidBlob", err)
	}
	short := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	if _, err := c.Decrypt(short); !errors.Is(err, ErrInvalidBlob) {
		t.Fatalf("blob shorter than the IV: got %v, want ErrInvalidBlob", err)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	t.Parallel()

	salt := base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(SaltBytes))

	a, err := DeriveKey("password-one!A1b", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}
	b, err := DeriveKey("password-one!A1b", salt)
	if err != nil {
		t.Fatalf("DeriveKey error: %v", err)
	}

	// A blob sealed under one derivation must open under the other.
	blob, err := a.Encrypt("shared")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	got, err := b.Decrypt(blob)
	if err != nil || got != "shared" {
		t.Fatalf("cross-derivation decrypt: got %q, %v", got, err)
	}
}

func TestDeriveKey_URLSafeSalt(t *testing.T) {
	t.Parallel()

	raw := common.GenerateRandByteArray(SaltBytes)
	std := base64.StdEncoding.EncodeToString(raw)
	urlSafe := base64.RawURLEncoding.EncodeToString(raw)

	a, err := DeriveKey("pw", std)
	if err != nil {
		t.Fatalf("DeriveKey(std) error: %v", err)
	}
	b, err := DeriveKey("pw", urlSafe)
	if err != nil {
		t.Fatalf("DeriveKey(url) error: %v", err)
	}

	blob, err := a.Encrypt("x")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if got, err := b.Decrypt(blob); err != nil || got != "x" {
		t.Fatalf("both encodings must derive the same key: got %q, %v", got, err)
	}
}

func TestClearKey_FailsClosed(t *testing.T) {
	t.Parallel()

	c := testCodec(t)
	blob, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	c.ClearKey()

	if c.HasKey() {
		t.Fatalf("HasKey true after ClearKey")
	}
	if _, err := c.Encrypt("x"); !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("Encrypt after ClearKey: got %v, want ErrKeyCleared", err)
	}
	if _, err := c.Decrypt(blob); !errors.Is(err, ErrKeyCleared) {
		t.Fatalf("Decrypt after ClearKey: got %v, want ErrKeyCleared", err)
	}
}
