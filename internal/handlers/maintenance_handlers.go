package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// MaintenanceHandler handles repair ticket endpoints.
type MaintenanceHandler struct {
	maintenance *services.MaintenanceService
	tenants     *services.TenantService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintenance *services.MaintenanceService, tenants *services.TenantService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance, tenants: tenants}
}

// Create files a ticket for the caller's own room.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	var req maintenanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	request, err := h.maintenance.CreateRequest(tenant.ID, services.MaintenanceInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, request)
}

// List returns tickets, optionally filtered by status or tenant.
func (h *MaintenanceHandler) List(c echo.Context) error {
	tenantID, _ := strconv.ParseUint(c.QueryParam("tenant_id"), 10, 32)
	requests, err := h.maintenance.ListRequests(
		models.MaintenanceStatus(c.QueryParam("status")), uint(tenantID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// ListOwn returns the caller's own tickets.
func (h *MaintenanceHandler) ListOwn(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	requests, err := h.maintenance.ListRequests(
		models.MaintenanceStatus(c.QueryParam("status")), tenant.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, requests)
}

// Get returns one ticket.
func (h *MaintenanceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	request, err := h.maintenance.GetRequestByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, request)
}

// UpdateStatus advances a ticket's repair state.
func (h *MaintenanceHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req maintenanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	request, err := h.maintenance.UpdateStatus(id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, request)
}

// Delete removes a ticket.
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.maintenance.DeleteRequest(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
