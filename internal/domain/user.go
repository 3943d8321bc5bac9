// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"strings"
	"time"
)

// User is a chat platform user. ID is assigned by the platform and never changes.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName joins the non-empty name parts.
func (u User) DisplayName() string {
	return strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	// UpsertUser inserts u when no row with u.ID exists and is a no-op otherwise.
	UpsertUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id int64) (*User, error)
}
