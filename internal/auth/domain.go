// Package auth handles registration, password and OTP login, Google
// sign-in and sessions.
package auth

import (
	"errors"
	"time"
)

// User is an account able to sign in.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	GoogleID     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

var (
	// ErrEmailTaken indicates the address already has an account.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrWeakPassword indicates the password fails the minimum policy.
	ErrWeakPassword = errors.New("auth: password too weak")
	// ErrUnknownRole indicates a role outside the authorization matrix.
	ErrUnknownRole = errors.New("auth: unknown role")
)
