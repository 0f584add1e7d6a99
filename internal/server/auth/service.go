package auth

import (
	"taskserver/internal/common"
	"taskserver/internal/server/model"
)

// Service gates every account operation. It works directly on a snapshot;
// callers are expected to invoke it inside the store's critical section so
// the check-then-write sequences stay atomic.
type Service struct {
	hasher Hasher
}

func NewService(hasher Hasher) *Service {
	return &Service{hasher: hasher}
}

// SignUp registers a new account with the hashed password. Empty usernames
// and passwords are rejected as invalid credentials; duplicates surface as
// ErrDuplicateUser.
func (s *Service) SignUp(snap *model.Snapshot, username, password string) error {
	if username == "" || password == "" {
		return common.ErrInvalidCredentials
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return snap.CreateAccount(username, digest)
}

// Login verifies the credentials. Unknown usernames and wrong passwords
// both return ErrInvalidCredentials so the reply cannot be used to probe
// for existing accounts.
func (s *Service) Login(snap *model.Snapshot, username, password string) error {
	digest, ok := snap.Users[username]
	if !ok || !s.hasher.Verify(password, digest) {
		return common.ErrInvalidCredentials
	}
	return nil
}

// VerifyPassword reports whether password matches the stored digest for
// username. Used to gate account deletion.
func (s *Service) VerifyPassword(snap *model.Snapshot, username, password string) bool {
	digest, ok := snap.Users[username]
	return ok && s.hasher.Verify(password, digest)
}
