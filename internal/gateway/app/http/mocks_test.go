package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gonotes/internal/auth/domain/entities"
	"gonotes/internal/auth/domain/services"
	gatewayhttp "gonotes/internal/gateway/app/http"
	"gonotes/internal/gateway/app/http/middleware"
	"gonotes/internal/gateway/views"
	noteentities "gonotes/internal/notes/domain/entities"
)

const (
	testUserID  = "65f1c0de0000000000000001"
	testEmail   = "john@example.com"
	testToken   = "valid-token"
	testNoteID  = "65f1c0de00000000000000aa"
	contentForm = "application/x-www-form-urlencoded"
)

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Register(ctx context.Context, email, password string) (*entities.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAuthUseCase) Login(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *mockAuthUseCase) VerifyToken(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAuthUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

func (m *mockAuthUseCase) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthUseCase) ValidateResetToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func (m *mockAuthUseCase) DeleteAccount(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) GetUserProfile(ctx context.Context, userID string) (*services.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Profile), args.Error(1)
}

type mockNoteUseCase struct {
	mock.Mock
}

func (m *mockNoteUseCase) List(ctx context.Context, ownerID string, archived bool) ([]*noteentities.Note, error) {
	args := m.Called(ctx, ownerID, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*noteentities.Note), args.Error(1)
}

func (m *mockNoteUseCase) Get(ctx context.Context, ownerID, noteID string) (*noteentities.Note, error) {
	args := m.Called(ctx, ownerID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*noteentities.Note), args.Error(1)
}

func (m *mockNoteUseCase) Create(ctx context.Context, ownerID, title, content string) (*noteentities.Note, error) {
	args := m.Called(ctx, ownerID, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*noteentities.Note), args.Error(1)
}

func (m *mockNoteUseCase) Update(ctx context.Context, ownerID, noteID, title, content string) (*noteentities.Note, error) {
	args := m.Called(ctx, ownerID, noteID, title, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*noteentities.Note), args.Error(1)
}

func (m *mockNoteUseCase) SetArchived(ctx context.Context, ownerID, noteID string, archived bool) (*noteentities.Note, error) {
	args := m.Called(ctx, ownerID, noteID, archived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*noteentities.Note), args.Error(1)
}

func (m *mockNoteUseCase) Delete(ctx context.Context, ownerID, noteID string) error {
	return m.Called(ctx, ownerID, noteID).Error(0)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// testServer собирает приложение со всеми маршрутами поверх моков.
type testServer struct {
	app   *fiber.App
	auth  *mockAuthUseCase
	users *mockUserUseCase
	notes *mockNoteUseCase
	store *mockPinger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	engine, err := views.New("")
	require.NoError(t, err)

	s := &testServer{
		app:   fiber.New(fiber.Config{Views: engine}),
		auth:  new(mockAuthUseCase),
		users: new(mockUserUseCase),
		notes: new(mockNoteUseCase),
		store: new(mockPinger),
	}

	s.auth.On("VerifyToken", mock.Anything, testToken).
		Return(&entities.User{ID: testUserID, Email: testEmail}, nil).Maybe()

	gatewayhttp.SetupRouter(s.app, gatewayhttp.Dependencies{
		Auth:   s.auth,
		Users:  s.users,
		Notes:  s.notes,
		Store:  s.store,
		Cookie: middleware.CookieOptions{TTL: time.Hour},
	})

	t.Cleanup(func() {
		s.auth.AssertExpectations(t)
		s.users.AssertExpectations(t)
		s.notes.AssertExpectations(t)
	})
	return s
}

type requestOption func(*http.Request)

func withSession(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testToken})
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string, opts ...requestOption) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (s *testServer) postForm(t *testing.T, target string, form url.Values, opts ...requestOption) (*http.Response, string) {
	t.Helper()
	return s.do(t, http.MethodPost, target, strings.NewReader(form.Encode()), contentForm, opts...)
}

func (s *testServer) postJSON(t *testing.T, target, body string, opts ...requestOption) (*http.Response, string) {
	t.Helper()
	return s.do(t, http.MethodPost, target, strings.NewReader(body), fiber.MIMEApplicationJSON, opts...)
}

func (s *testServer) get(t *testing.T, target string, opts ...requestOption) (*http.Response, string) {
	t.Helper()
	return s.do(t, http.MethodGet, target, nil, "", opts...)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}
