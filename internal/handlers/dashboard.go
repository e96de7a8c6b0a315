package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/services"
)

// DashboardHandler handles the admin dashboard aggregate endpoint.
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns the cached cross-domain aggregate.
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboard.GetStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
