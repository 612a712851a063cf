// Package hashx wraps one-way credential hashing. Real passwords and
// one-time invitation passwords are both opaque secrets here; the caller
// decides which stored digest to compare against.
package hashx

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor. 12 lands at roughly tens of milliseconds
// per call on current hardware.
const Cost = 12

// Hash returns a salted one-way digest of the secret. bcrypt embeds a fresh
// random salt in every digest, so two hashes of the same secret differ.
func Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the secret matches the stored digest.
func Verify(secret string, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
