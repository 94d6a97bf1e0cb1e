package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biblioteca/library-system/internal/core/ports"
)

// DashboardHandler serves the summary views and the action log.
type DashboardHandler struct {
	dashboards ports.DashboardService
	audit      ports.AuditService
}

func NewDashboardHandler(dashboards ports.DashboardService, audit ports.AuditService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, audit: audit}
}

// Student handles GET /v1/dashboard.
//
// @Summary      The caller's active loans and new arrivals
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  studentDashboardResponse
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Student(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	d, err := h.dashboards.Student(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, studentDashboardResponse{
		ActiveLoans: toLoanResponses(d.ActiveLoans),
		RecentBooks: toBookResponses(d.RecentBooks),
	})
}

// Admin handles GET /v1/admin/dashboard.
//
// @Summary      Library-wide counters and recent actions
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  adminDashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	d, err := h.dashboards.Admin(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminDashboardResponse{
		TotalBooks:   d.TotalBooks,
		TotalUsers:   d.TotalUsers,
		ActiveLoans:  d.ActiveLoans,
		OverdueLoans: d.OverdueLoans,
		RecentLogs:   toActionLogResponses(d.RecentLogs),
	})
}

// Logs handles GET /v1/admin/logs.
//
// @Summary      Most recent action log entries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum entries (default 50)"
// @Success      200    {object}  listLogsResponse
// @Failure      400    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/admin/logs [get]
func (h *DashboardHandler) Logs(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	logs, err := h.audit.Recent(c.Request().Context(), actor, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listLogsResponse{Data: toActionLogResponses(logs)})
}
