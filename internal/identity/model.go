package identity

import (
	"errors"
	"time"
)

var (
	// ErrEmailTaken indicates a user with this email already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials indicates the email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound indicates no user with the given identifier exists.
	ErrNotFound = errors.New("user not found")
)

// User represents a registered wallet owner. The user ID is the principal
// identifier every wallet and transaction ownership check runs against.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials request structure.
type Credentials struct {
	Email    string
	Password string
}
