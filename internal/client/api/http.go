package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/common"
)

// HTTPClient is the production Client implementation over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewHTTPClient builds a client for the given base URL ("http://host:port").
// The timeout bounds every individual request.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken attaches the bearer token to subsequent requests. An empty
// string clears it.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errBody is the error envelope the backend returns on non-2xx responses.
type errBody struct {
	Message string `json:"message"`
}

// do executes one JSON round trip. A nil out skips response decoding.
// Transport failures are wrapped in common.ErrUnavailable; non-2xx statuses
// become *Error with the body message or the given fallback.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: fallback}
		var eb errBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Message != "" {
			apiErr.Message = eb.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &res, "Login failed"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, nu models.NewUser) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nu, &res, "Registration failed"); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout tells the server to drop the session. The response body is ignored.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, "Logout failed")
}

// Me resolves the user behind the attached bearer token.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, "Session check failed"); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) UpdateSettings(ctx context.Context, s models.Settings) error {
	return c.do(ctx, http.MethodPut, "/api/user/settings", s, nil, "Settings update failed")
}

func (c *HTTPClient) Courses(ctx context.Context) ([]models.Course, error) {
	var out []models.Course
	if err := c.do(ctx, http.MethodGet, "/api/courses", nil, &out, "Could not load courses"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Assignments(ctx context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	if err := c.do(ctx, http.MethodGet, "/api/assignments", nil, &out, "Could not load assignments"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Grades(ctx context.Context) ([]models.Grade, error) {
	var out []models.Grade
	if err := c.do(ctx, http.MethodGet, "/api/grades", nil, &out, "Could not load grades"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Materials(ctx context.Context) ([]models.Material, error) {
	var out []models.Material
	if err := c.do(ctx, http.MethodGet, "/api/materials", nil, &out, "Could not load materials"); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the number of unread messages for the current user.
// Polled by the background watcher.
func (c *HTTPClient) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/messages/unread", nil, &out, "Could not load messages"); err != nil {
		return 0, err
	}
	return out.Count, nil
}
