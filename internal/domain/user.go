package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when a user tries to access a record they do not own.
	ErrForbidden = errors.New("access denied")
)

// User represents a registered farmer account
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session carries the authenticated identity extracted from a token
type Session struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}
