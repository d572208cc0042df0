package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/api/middleware"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, identifier, password string) (*domain.User, error)
	loginRecorded  []string
}

func (s *stubAuthService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, identifier, password)
}

func (s *stubAuthService) LoadPrincipal(_ context.Context, id string) (*domain.User, error) {
	return nil, nil
}

func (s *stubAuthService) RecordLogin(_ context.Context, id string) error {
	s.loginRecorded = append(s.loginRecorded, id)
	return nil
}

type stubUserService struct {
	createFn         func(ctx context.Context, username, email, password string, role domain.RoleID) (string, error)
	setPasswordFn    func(ctx context.Context, id, pw string) error
	changePasswordFn func(ctx context.Context, id, current, next string) error
	updateRoleFn     func(ctx context.Context, id string, role domain.RoleID) error
	toggleFn         func(ctx context.Context, id string) error
	listFn           func(ctx context.Context) ([]*domain.User, error)
	profileFn        func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserService) CreateUser(ctx context.Context, username, email, password string, role domain.RoleID) (string, error) {
	return s.createFn(ctx, username, email, password, role)
}

func (s *stubUserService) SetPassword(ctx context.Context, id, pw string) error {
	return s.setPasswordFn(ctx, id, pw)
}

func (s *stubUserService) ChangeOwnPassword(ctx context.Context, id, current, next string) error {
	return s.changePasswordFn(ctx, id, current, next)
}

func (s *stubUserService) UpdateRole(ctx context.Context, id string, role domain.RoleID) error {
	return s.updateRoleFn(ctx, id, role)
}

func (s *stubUserService) ToggleActive(ctx context.Context, id string) error {
	return s.toggleFn(ctx, id)
}

func (s *stubUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Profile(ctx context.Context, id string) (*domain.User, error) {
	return s.profileFn(ctx, id)
}

type stubSessions struct {
	created   map[string]string
	destroyed []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{created: map[string]string{}}
}

func (s *stubSessions) Create(_ context.Context, userID string) (string, error) {
	id := "sess-" + userID
	s.created[id] = userID
	return id, nil
}

func (s *stubSessions) Destroy(_ context.Context, sessionID string) error {
	s.destroyed = append(s.destroyed, sessionID)
	return nil
}

func (s *stubSessions) TTL() time.Duration { return time.Hour }

type stubTokens struct{}

func (stubTokens) Issue(userID string) (string, error) { return "token-" + userID, nil }

type captureAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *captureAudit) Record(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *captureAudit) types() []domain.AuditEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditEventType, len(a.events))
	for i, e := range a.events {
		out[i] = e.Type
	}
	return out
}

type stubAuditService struct {
	listFn func(ctx context.Context, f ports.AuditFilter) ([]*domain.AuditEvent, error)
}

func (s *stubAuditService) Process(context.Context, domain.AuditEvent) error { return nil }

func (s *stubAuditService) List(ctx context.Context, f ports.AuditFilter) ([]*domain.AuditEvent, error) {
	return s.listFn(ctx, f)
}

// newContext builds an echo context with the validator installed and,
// when principal is non-nil, an authenticated caller.
func newContext(method, target string, body io.Reader, contentType string, principal *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		middleware.SetPrincipal(c, principal)
	}
	return c, rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
