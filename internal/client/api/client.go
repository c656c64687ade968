package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/common"
)

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Client defines the REST operations the campuslink client consumes.
//
// Contract:
//   - Login / Register: exchange credentials for an AuthResult.
//   - Logout: best-effort server-side session teardown.
//   - Me: resolve the current user from the attached bearer token.
//   - UpdateSettings: write the user-settings record (best-effort bootstrap).
//   - Courses / Assignments / Grades / Materials / UnreadCount: read-side
//     views for the dashboards.
//   - SetToken: attach (or clear, with "") the bearer token for subsequent
//     calls.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, nu models.NewUser) (*AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateSettings(ctx context.Context, s models.Settings) error

	Courses(ctx context.Context) ([]models.Course, error)
	Assignments(ctx context.Context) ([]models.Assignment, error)
	Grades(ctx context.Context) ([]models.Grade, error)
	Materials(ctx context.Context) ([]models.Material, error)
	UnreadCount(ctx context.Context) (int, error)

	SetToken(token string)
}

// Error is a normalized non-2xx API response.
//
// Message is taken from the response body's {"message": ...} field when
// present, otherwise from the per-operation fallback supplied by the caller.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Is maps authentication statuses onto common.ErrUnauthorized so callers
// can use errors.Is without inspecting status codes.
func (e *Error) Is(target error) bool {
	if target == common.ErrUnauthorized {
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// ErrorMessage extracts the human-readable message from err if it is an
// *Error; otherwise it returns the fallback. Used by the auth service to
// populate Session.Err.
func ErrorMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
