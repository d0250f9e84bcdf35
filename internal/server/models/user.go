// Package models holds the persisted entities shared by repositories and
// services.
package models

import "time"

// Role is the authorization role attached to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an identity record. PasswordHash is a bcrypt digest and must never
// be serialized to clients.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
}
