package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/tablero/dashboard-auth/docs"
	"github.com/tablero/dashboard-auth/internal/api/handler"
	"github.com/tablero/dashboard-auth/internal/api/middleware"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// SessionStore is the session backend shared by login/logout and the
// Authenticate middleware.
type SessionStore interface {
	handler.SessionManager
	Resolve(ctx context.Context, sessionID string) (string, error)
}

// Tokens issues and parses bearer tokens.
type Tokens interface {
	handler.TokenIssuer
	Parse(raw string) (string, error)
}

// RouterDeps carries everything NewRouter wires together. Sessions, Tokens
// and Audit may be nil; Registerer and Gatherer default to the global
// Prometheus registry.
type RouterDeps struct {
	Log          zerolog.Logger
	Auth         ports.AuthService
	Users        ports.UserService
	AuditService ports.AuditService
	Audit        ports.AuditRecorder
	Sessions     SessionStore
	Tokens       Tokens

	CookieName   string
	SecureCookie bool
	LoginPath    string
	LandingPath  string

	Checks     []handler.DependencyCheck
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds the Echo instance with every route and guard registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dashboard_auth",
		Registerer: registerer,
	}))

	authOpts := middleware.AuthOptions{
		Loader:     deps.Auth,
		CookieName: deps.CookieName,
		Log:        deps.Log,
	}
	// Assigned only when set so the interfaces stay nil rather than typed nil.
	if deps.Sessions != nil {
		authOpts.Sessions = deps.Sessions
	}
	if deps.Tokens != nil {
		authOpts.Tokens = deps.Tokens
	}
	e.Use(middleware.Authenticate(authOpts))

	guard := middleware.NewGuard(middleware.GuardOptions{
		LoginPath:   deps.LoginPath,
		LandingPath: deps.LandingPath,
		Reporter:    middleware.NewDenialLog(deps.Log, deps.Audit),
	})

	authHandlerOpts := handler.AuthHandlerOptions{
		Auth:         deps.Auth,
		Users:        deps.Users,
		Audit:        deps.Audit,
		CookieName:   deps.CookieName,
		SecureCookie: deps.SecureCookie,
		Log:          deps.Log,
	}
	if deps.Sessions != nil {
		authHandlerOpts.Sessions = deps.Sessions
	}
	if deps.Tokens != nil {
		authHandlerOpts.Tokens = deps.Tokens
	}
	authHandler := handler.NewAuthHandler(authHandlerOpts)
	userHandler := handler.NewUserHandler(deps.Users, deps.Audit, deps.Log)
	roleHandler := handler.NewRoleHandler()
	auditHandler := handler.NewAuditHandler(deps.AuditService)

	// --- Ops (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.Checks...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)
	me := e.Group("/auth", guard.RequireAuthenticated())
	me.POST("/logout", authHandler.Logout)
	me.GET("/me", authHandler.Me)
	me.PUT("/password", authHandler.ChangePassword)

	e.GET("/roles", roleHandler.List, guard.RequirePermission(domain.PermView))

	// --- Administration ---
	admin := e.Group("/admin", guard.RequireRole(domain.RoleAdmin))

	users := admin.Group("/users", guard.RequirePermission(domain.PermManageUsers))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id/role", userHandler.UpdateRole)
	users.PUT("/:id/password", userHandler.ResetPassword)
	users.POST("/:id/toggle", userHandler.Toggle)

	admin.GET("/audit", auditHandler.List, guard.RequirePermission(domain.PermViewAudit))

	return e
}
