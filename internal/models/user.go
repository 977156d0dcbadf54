package models

import (
	"fmt"
	"strings"
	"time"
)

// User represents an account that owns cached playlists and conversion history.
type User struct {
	id        string
	sequence  int
	email     string
	name      string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewUser creates a User with the given sequence, email, and display name.
func NewUser(sequence int, email, name string) *User {
	now := time.Now()
	return &User{
		sequence:  sequence,
		email:     email,
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) Name() string          { return u.name }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)           { u.id = id }
func (u *User) SetUpdatedAt(t time.Time)  { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// Validate checks that the user has a usable email and display name.
func (u *User) Validate() error {
	if strings.TrimSpace(u.email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.email, "@") {
		return fmt.Errorf("email is invalid: %s", u.email)
	}
	if strings.TrimSpace(u.name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
