// Package model defines the data structures shared by the backend and the client.
// They are plain structs with JSON tags so the same values travel over the API.
package model

import "time"

// User represents a registered account.
//
// Email is the account's unique identifier and never changes after sign-up.
// Name is the only field a user can edit from the client.
//
// WHY PasswordHash HAS json:"-"?
// The hash lives on the server side only. The "-" tag tells encoding/json to
// skip the field entirely, so a User can be written straight into an HTTP
// response without leaking the hash.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	Name         string    `json:"name"      db:"name"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// WithName returns a copy of u carrying the new display name.
// The email (identity) is preserved.
func (u User) WithName(name string) User {
	u.Name = name
	return u
}
