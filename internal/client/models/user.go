// Package models defines the data types the campuslink client exchanges
// with the LMS API and keeps in the local session.
package models

import (
	"errors"
	"fmt"
)

// Role is the user's position in the campus hierarchy. It is immutable for
// a given user within a session; changing roles requires re-authentication.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates a wire-format role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is the authenticated identity as returned by the API.
type User struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Campus       string `json:"campus"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// UserPatch carries partial profile updates. Nil fields are left untouched
// by Merge. Role is deliberately absent: it never changes mid-session.
type UserPatch struct {
	FullName     *string
	Campus       *string
	ProfileImage *string
}

// Merge returns a copy of u with the non-nil patch fields applied.
func (u User) Merge(p UserPatch) User {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Campus != nil {
		u.Campus = *p.Campus
	}
	if p.ProfileImage != nil {
		u.ProfileImage = *p.ProfileImage
	}
	return u
}

// NewUser holds the fields collected by the registration form.
type NewUser struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Campus   string `json:"campus"`
}

// Validate performs the client-side checks the registration view applies
// before calling the API. Server-side validation remains authoritative.
func (nu NewUser) Validate() error {
	if nu.FullName == "" {
		return errors.New("full name is required")
	}
	if nu.Email == "" {
		return errors.New("email is required")
	}
	if nu.Password == "" {
		return errors.New("password is required")
	}
	if !nu.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, nu.Role)
	}
	return nil
}
