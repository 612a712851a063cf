// Package secrets provides the session-signing-key collaborator. The key is
// fetched from an external secret store and cached for the process lifetime;
// the cache is safe because the key is immutable while the process runs.
package secrets

import "context"

// Provider supplies the symmetric session signing key. One verification or
// issuance uses a single fetch, so the key cannot change mid-operation.
type Provider interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

// Static is a fixed-key provider for development and tests.
type Static struct {
	Key []byte
}

func (s *Static) SigningKey(ctx context.Context) ([]byte, error) {
	return s.Key, nil
}
