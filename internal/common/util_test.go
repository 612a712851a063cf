package common

import (
	"encoding/hex"
	"testing"
)

func TestMakeRandHexString(t *testing.T) {
	// 32 random bytes is the challenge nonce size
	const size = 32

	s, err := MakeRandHexString(size)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != size*2 {
		t.Fatalf("expected %d hex characters, got %d", size*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("not valid hex: %v", err)
	}

	other, err := MakeRandHexString(size)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == other {
		t.Fatalf("two generated nonces are identical")
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestGenerateRandByteArray(t *testing.T) {
	// encryption salts are 32 bytes
	const size = 32

	salt := GenerateRandByteArray(size)
	if len(salt) != size {
		t.Fatalf("expected %d bytes, got %d", size, len(salt))
	}

	other := GenerateRandByteArray(size)
	same := true
	for i := range salt {
		if salt[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("two generated salts are identical")
	}
}

func TestWipeByteArray(t *testing.T) {
	password := []byte("Sup3r$ecretPass")
	WipeByteArray(password)
	for i, v := range password {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, v)
		}
	}

	WipeByteArray(nil)
}
