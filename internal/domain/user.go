package domain

import (
	"strings"
	"time"
)

// User is one directory entry used to resolve assignee identifiers.
type User struct {
	ID          string
	DisplayName string
	Role        string
	Department  string
	CreatedAt   time.Time
}

// NewUser validates and normalizes one directory entry.
func NewUser(id, displayName, role, department string, now time.Time) (User, error) {
	id = strings.TrimSpace(id)
	displayName = strings.TrimSpace(displayName)
	if id == "" {
		return User{}, ErrInvalidID
	}
	if displayName == "" {
		return User{}, ErrInvalidUserName
	}
	return User{
		ID:          id,
		DisplayName: displayName,
		Role:        strings.TrimSpace(role),
		Department:  strings.TrimSpace(department),
		CreatedAt:   now.UTC(),
	}, nil
}
