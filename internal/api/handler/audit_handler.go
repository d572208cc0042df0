package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns the most recent audit events.
//
// @Summary      List audit events
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        type     query     string  false  "Event type"
// @Param        subject  query     string  false  "Account the event is about"
// @Param        limit    query     int     false  "Max events (default 50, max 500)"
// @Success      200      {array}   auditEventResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Router       /admin/audit [get]
func (h *AuditHandler) List(c echo.Context) error {
	filter := ports.AuditFilter{
		Type:    domain.AuditEventType(c.QueryParam("type")),
		Subject: c.QueryParam("subject"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		filter.Limit = n
	}

	events, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	resp := make([]auditEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toAuditEventResponse(e))
	}
	return c.JSON(http.StatusOK, resp)
}
