package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

// DenialReporter receives every denial emitted by a Guard.
type DenialReporter interface {
	ReportDenial(c echo.Context, d domain.Denial)
}

// GuardOptions configures where denied browser requests are sent.
type GuardOptions struct {
	LoginPath   string
	LandingPath string
	Reporter    DenialReporter
}

// Guard builds middleware that enforces authentication, permission and role
// requirements around protected handlers.
type Guard struct {
	loginPath   string
	landingPath string
	reporter    DenialReporter
}

func NewGuard(opts GuardOptions) *Guard {
	g := &Guard{
		loginPath:   opts.LoginPath,
		landingPath: opts.LandingPath,
		reporter:    opts.Reporter,
	}
	if g.loginPath == "" {
		g.loginPath = "/login"
	}
	if g.landingPath == "" {
		g.landingPath = "/"
	}
	return g
}

type deniedResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// RequireAuthenticated lets a request through only when a principal is
// attached.
func (g *Guard) RequireAuthenticated() echo.MiddlewareFunc {
	return g.guard(func(*domain.User) *domain.Denial { return nil })
}

// RequirePermission lets a request through only when the principal's role
// grants p.
func (g *Guard) RequirePermission(p domain.Permission) echo.MiddlewareFunc {
	return g.guard(func(u *domain.User) *domain.Denial {
		return domain.AuthorizePermission(u, p)
	})
}

// RequireRole lets a request through when the principal holds role or is an
// admin. It panics when role is not registered.
func (g *Guard) RequireRole(role domain.RoleID) echo.MiddlewareFunc {
	if !domain.IsValidRole(role) {
		panic(fmt.Sprintf("middleware: RequireRole with unregistered role %q", role))
	}
	return g.guard(func(u *domain.User) *domain.Denial {
		return domain.AuthorizeRole(u, role)
	})
}

func (g *Guard) guard(check func(*domain.User) *domain.Denial) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFrom(c)
			if principal == nil {
				return g.deny(c, domain.Denial{Reason: domain.DenialUnauthenticated})
			}
			if d := check(principal); d != nil {
				return g.deny(c, *d)
			}
			return next(c)
		}
	}
}

func (g *Guard) deny(c echo.Context, d domain.Denial) error {
	if g.reporter != nil {
		g.reporter.ReportDenial(c, d)
	}

	if wantsJSON(c) {
		if d.Reason == domain.DenialUnauthenticated {
			return c.JSON(http.StatusUnauthorized, deniedResponse{Error: "not authenticated", Reason: string(d.Reason)})
		}
		return c.JSON(http.StatusForbidden, deniedResponse{Error: "forbidden", Reason: string(d.Reason), Detail: d.Detail})
	}

	if d.Reason == domain.DenialUnauthenticated {
		q := url.Values{"next": {c.Request().RequestURI}}
		return c.Redirect(http.StatusSeeOther, g.loginPath+"?"+q.Encode())
	}
	q := url.Values{"denied": {string(d.Reason)}, "detail": {d.Detail}}
	return c.Redirect(http.StatusSeeOther, g.landingPath+"?"+q.Encode())
}

// wantsJSON reports whether the caller is an API client rather than a
// browser navigating the dashboard.
func wantsJSON(c echo.Context) bool {
	h := c.Request().Header
	if strings.Contains(h.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return true
	}
	if strings.HasPrefix(h.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	return h.Get(echo.HeaderAuthorization) != ""
}
