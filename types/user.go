package types

import (
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user, assigned by the store
	// on creation and immutable afterward.
	ID int `json:"id" db:"id"`

	// Email is the user's address, normalized to lowercase. It is
	// globally unique; the store enforces uniqueness.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewUser constructs an unsaved user. The email is lowercased so that
// uniqueness and lookups are case-insensitive. ID stays zero until the
// store persists the record.
func NewUser(email, passwordHash, firstName, lastName string) User {
	return User{
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    time.Now(),
	}
}

// IsValidEmail reports whether the string has the shape local@domain,
// with letters, digits and +_.- in the local part and .- in the domain.
// It is a syntactic check only.
func IsValidEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

// FullName returns the first and last name joined by a single space.
// It is derived, never persisted.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
