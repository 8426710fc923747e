package mocks

import "errors"

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare on a mismatch.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordHasher is a reversible stand-in for bcrypt: the "hash" is the
// password with a prefix, so tests stay fast.
type MockPasswordHasher struct {
	HashErr error
}

// Hash implements auth.PasswordHasher.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return ErrPasswordMismatch
	}
	return nil
}
