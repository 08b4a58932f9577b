package types

import "time"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user, assigned at creation.
	ID string `json:"id" db:"id"`

	// Email is the user's email address. It is the login key and is
	// unique across all accounts (compared exactly, case-sensitive).
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for credential verification.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the outcome of a successful auth operation. Expected
// failures are reported as typed errors by the auth service instead.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}
