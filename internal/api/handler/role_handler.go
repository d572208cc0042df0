package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// List returns the role registry in privilege order.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      401  {object}  errorResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles := domain.Roles()
	resp := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, roleResponse{ID: r.ID, Name: r.Name, Permissions: r.Permissions()})
	}
	return c.JSON(http.StatusOK, resp)
}
