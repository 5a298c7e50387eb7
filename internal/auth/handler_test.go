package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/shared"
	_ "github.com/quotedesk/quotedesk/testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", time.Hour, false)
	handler := auth.NewHandler(testLogger(), auth.NewService(repo), sessionManager)
	return handler, sessionManager
}

func activeUser(t *testing.T) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &auth.User{
		ID:           42,
		Email:        "dana@quotedesk.local",
		FullName:     "Dana Lim",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestLoginSuccess(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	body := strings.NewReader(`{"email":"dana@quotedesk.local","password":"correct horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ID       int64  `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "dana@quotedesk.local", resp.Email)

	sess := shared.SessionFromContext(req.Context())
	assert.Equal(t, "42", sess.User())
}

func TestLoginBadPassword(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	body := strings.NewReader(`{"email":"dana@quotedesk.local","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	body := strings.NewReader(`{"email":"nobody@quotedesk.local","password":"anything"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":""}`))
	req.Header.Set("Content-Type", "application/json")
	req = withSession(t, sm, req)
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresSessionUser(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = withSession(t, sm, req)
	rec := httptest.NewRecorder()

	handler.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	handler, sm := newAuthHandler(t, &stubRepo{user: activeUser(t)})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req = withSession(t, sm, req)
	sess := shared.SessionFromContext(req.Context())
	sess.SetUser("42")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sess.User())
}
