package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/campuslink/internal/client/config"
	"github.com/dmitrijs2005/campuslink/internal/client/models"
	"github.com/dmitrijs2005/campuslink/internal/client/routing"
	"github.com/dmitrijs2005/campuslink/internal/client/session"
	"github.com/dmitrijs2005/campuslink/internal/logging"
)

// memRepo is an in-memory metadata.Repository for tests.
type memRepo struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemRepo() *memRepo { return &memRepo{m: make(map[string][]byte)} }

func (r *memRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[key], nil
}

func (r *memRepo) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = append([]byte(nil), value...)
	return nil
}

func (r *memRepo) SetMany(_ context.Context, values map[string][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range values {
		r.m[k] = append([]byte(nil), v...)
	}
	return nil
}

func (r *memRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

type fakeAuth struct {
	loginEmail string
	loginPass  string
	loginRet   session.Session
	loginErr   error

	regNew models.NewUser
	regRet session.Session
	regErr error

	logoutCalled bool
	logoutErr    error

	revalErr error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (session.Session, error) {
	f.loginEmail, f.loginPass = email, password
	return f.loginRet, f.loginErr
}

func (f *fakeAuth) Register(_ context.Context, nu models.NewUser) (session.Session, error) {
	f.regNew = nu
	return f.regRet, f.regErr
}

func (f *fakeAuth) Logout(_ context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeAuth) Revalidate(_ context.Context) error { return f.revalErr }

type fakeCampus struct {
	courses     []models.Course
	assignments []models.Assignment
	grades      []models.Grade
	materials   []models.Material
	unread      int
	err         error
}

func (f *fakeCampus) Courses(_ context.Context) ([]models.Course, error) {
	return f.courses, f.err
}

func (f *fakeCampus) Assignments(_ context.Context) ([]models.Assignment, error) {
	return f.assignments, f.err
}

func (f *fakeCampus) Grades(_ context.Context) ([]models.Grade, error) {
	return f.grades, f.err
}

func (f *fakeCampus) Materials(_ context.Context) ([]models.Material, error) {
	return f.materials, f.err
}

func (f *fakeCampus) UnreadCount(_ context.Context) (int, error) {
	return f.unread, f.err
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestApp builds an App over fakes and an in-memory store.
func newTestApp(t *testing.T, auth *fakeAuth, campus *fakeCampus) *App {
	t.Helper()

	var cfg config.Config
	cfg.LoadDefaults()

	return &App{
		config:  &cfg,
		store:   session.New(newMemRepo(), make([]byte, 32), testLogger()),
		auth:    auth,
		campus:  campus,
		log:     testLogger(),
		reader:  bufio.NewReader(strings.NewReader("")),
		closeDB: func() error { return nil },
		path:    routing.PathLogin,
	}
}

// capturePrintln redirects printlnFn into a line buffer for assertions.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(args...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
