package model

import (
	"errors"
	"time"
)

// User is an account allowed to use the HTTP API.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleUser
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:   3,
		RoleManager: 2,
		RoleUser:    1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
