package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/baldiga/linkedin-ai-proxy-v2/internal/config"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/model"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/quota"
	"github.com/baldiga/linkedin-ai-proxy-v2/internal/repository"
)

// memUsers is an in-memory UserStore (and quota.Store) used by the
// handler tests instead of MySQL. Commit semantics mirror the
// repository's conditional UPDATE.
type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newMemUsers(users ...model.User) *memUsers {
	s := &memUsers{users: make(map[string]model.User)}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *memUsers) Create(_ context.Context, email, passwordHash, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return repository.ErrEmailExists
	}
	s.users[email] = model.User{
		Email:         email,
		PasswordHash:  passwordHash,
		Tier:          model.TierFree,
		UsedCount:     0,
		LastResetDate: day,
	}
	return nil
}

func (s *memUsers) Get(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *memUsers) CommitUsage(_ context.Context, email, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	if u.LastResetDate != day {
		u.UsedCount = 1
		u.LastResetDate = day
	} else {
		u.UsedCount++
	}
	s.users[email] = u
	return nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:    "test-secret",
		AccessTTLMin: 60,
		BcryptCost:   4, // bcrypt minimum, keeps the tests fast
		GenTimeout:   2 * time.Second,
	}
}

func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newLedger(store quota.Store) *quota.Ledger {
	return quota.New(store, model.TierLimits())
}
