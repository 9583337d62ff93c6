// Package models defines the persistent entities of the marketplace.
package models

import "time"

// User is a registered account. PasswordHash and PasswordSalt are hex-encoded
// PBKDF2 material and must never leave the server: every outbound
// representation goes through Sanitized.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
}

// PublicUser is the client-facing shape of a User. It has no password fields
// at all, so a credential leak through serialization is a type error rather
// than a runtime bug.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitized returns the client-facing view of the user.
func (u *User) Sanitized() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
