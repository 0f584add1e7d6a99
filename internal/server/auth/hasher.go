// Package auth implements account creation and credential verification on
// top of an opaque password-hashing capability.
package auth

import "golang.org/x/crypto/bcrypt"

// Hasher is the password-hashing capability consumed by the service.
// Digests are opaque strings; only Verify can interpret them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// BcryptHasher hashes with bcrypt at the default cost. Digests are
// interchangeable with those produced by other bcrypt implementations, so
// existing snapshots keep working.
type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
