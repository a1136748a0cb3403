package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy hashes account passwords and enforces a minimum length.
type PasswordPolicy struct {
	cost      int
	minLength int
}

// ShortPasswordError reports a password below the policy minimum.
type ShortPasswordError struct {
	MinLength int
}

func (e *ShortPasswordError) Error() string {
	return fmt.Sprintf("must be at least %d characters", e.MinLength)
}

// NewPasswordPolicy builds a policy. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewPasswordPolicy(cost, minLength int) PasswordPolicy {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordPolicy{cost: cost, minLength: minLength}
}

// Check validates length only. Empty passwords are left to required-field
// validation.
func (p PasswordPolicy) Check(password string) error {
	if password != "" && len(password) < p.minLength {
		return &ShortPasswordError{MinLength: p.minLength}
	}
	return nil
}

// Hash checks the password against the policy and hashes it.
func (p PasswordPolicy) Hash(password string) (string, error) {
	if err := p.Check(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches reports whether plain is the password behind hashed.
func (p PasswordPolicy) Matches(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
