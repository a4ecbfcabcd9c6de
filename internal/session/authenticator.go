package session

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator decides who may open a session. Any shopper email is
// accepted; the admin email must present the password behind AdminHash.
type Authenticator struct {
	AdminEmail string
	AdminHash  []byte
}

func NewAuthenticator(adminEmail, adminHash string) *Authenticator {
	return &Authenticator{
		AdminEmail: normalizeEmail(adminEmail),
		AdminHash:  []byte(adminHash),
	}
}

// Verify returns the normalized email and whether it holds admin rights.
func (a *Authenticator) Verify(email, password string) (string, bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", false, ErrEmailRequired
	}

	if a.AdminEmail == "" || email != a.AdminEmail {
		return email, false, nil
	}

	if len(a.AdminHash) == 0 {
		return "", false, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.AdminHash, []byte(password)); err != nil {
		return "", false, ErrInvalidCredentials
	}
	return email, true, nil
}
