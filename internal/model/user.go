// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Identity is email + password: the email is UNIQUE in the database and is
// what the user logs in with. We still generate our own internal string ID
// (xid) so primary keys stay stable even if the user changes their email.
//
// WHY json:"-" ON PasswordHash?
// The hash must never leave the server. Tagging it with "-" means
// encoding/json skips the field entirely — even if a handler accidentally
// marshals a full User, the hash is not in the response.
//
// ResetToken/ResetExpiresAt implement the password-reset window: a random
// token with a short expiry is set by forgot-password and consumed by
// reset-password. Both are empty/zero for accounts with no pending reset.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ResetToken     string    `json:"-"`
	ResetExpiresAt time.Time `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
