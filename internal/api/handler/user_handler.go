package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tablero/dashboard-auth/internal/api/metrics"
	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

// UserHandler serves account administration.
type UserHandler struct {
	users ports.UserService
	audit ports.AuditRecorder
	log   zerolog.Logger
}

func NewUserHandler(users ports.UserService, audit ports.AuditRecorder, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, audit: audit, log: log}
}

// List returns every account, newest first.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Create registers a new active account. An empty role means viewer.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  createdUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	id, err := h.users.CreateUser(ctx, req.Username, req.Email, req.Password, domain.RoleID(req.Role))
	if err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditUserCreated, ActorID: actor.ID, Subject: id, Detail: req.Username})

	resp := createdUserResponse{ID: id}
	if user, err := h.users.Profile(ctx, id); err == nil {
		resp.User = user
	} else {
		h.log.Warn().Err(err).Str("user_id", id).Msg("created user could not be reloaded")
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get returns a single account.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProfileResponse(user))
}

// UpdateRole assigns a registered role to an account.
//
// @Summary      Change user role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	if err := h.users.UpdateRole(c.Request().Context(), id, domain.RoleID(req.Role)); err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("update_role").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditRoleChanged, ActorID: actor.ID, Subject: id, Detail: req.Role})
	return c.JSON(http.StatusOK, messageResponse{Message: "role updated"})
}

// ResetPassword sets an account's password without the current one.
//
// @Summary      Reset user password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User id"
// @Param        body  body      setPasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/users/{id}/password [put]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	id := c.Param("id")
	if err := h.users.SetPassword(c.Request().Context(), id, req.Password); err != nil {
		return err
	}

	metrics.UserMutationsTotal.WithLabelValues("reset_password").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditPasswordReset, ActorID: actor.ID, Subject: id})
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// Toggle flips an account between active and inactive and returns it.
//
// @Summary      Toggle user status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id}/toggle [post]
func (h *UserHandler) Toggle(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	if err := h.users.ToggleActive(ctx, id); err != nil {
		return err
	}

	user, err := h.users.Profile(ctx, id)
	if err != nil {
		return err
	}

	detail := "deactivated"
	if user.Active {
		detail = "activated"
	}
	metrics.UserMutationsTotal.WithLabelValues("toggle_active").Inc()
	record(h.audit, c, domain.AuditEvent{Type: domain.AuditStatusToggled, ActorID: actor.ID, Subject: id, Detail: detail})
	return c.JSON(http.StatusOK, newProfileResponse(user))
}
