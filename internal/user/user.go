// Package user defines the user model used throughout the application,
// particularly for authentication and task ownership.
package user

// User represents a system account.
// Exactly one account (the seeded admin) exists in normal operation;
// the password is stored as provided, without hashing.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Username must be unique across all users.
	Username string `json:"username"`

	// Password is the plaintext credential compared at login.
	// Never serialized into responses.
	Password string `json:"-"`
}
