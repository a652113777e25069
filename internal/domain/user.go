package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	CreatedAt    time.Time
}

type SignUp struct {
	Name     string
	Username string
	Password string
}

func (s SignUp) Validate() error {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Username) == "" || s.Password == "" {
		return NewValidationError("All fields are required")
	}
	return nil
}

type PasswordChange struct {
	Current string
	New     string
}

func (p PasswordChange) Validate() error {
	if p.Current == "" || p.New == "" {
		return NewValidationError("Both current and new passwords are required")
	}
	if p.Current == p.New {
		return NewValidationError("New password cannot be the same as the current password")
	}
	return nil
}
