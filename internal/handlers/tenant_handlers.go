package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// TenantHandler handles tenant lifecycle endpoints.
type TenantHandler struct {
	tenants *services.TenantService
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenants *services.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create assigns an account to a bed as a Pending tenant.
func (h *TenantHandler) Create(c echo.Context) error {
	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tenant, err := h.tenants.CreateTenant(tenantInputFrom(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tenant)
}

// List returns tenants matching the query filters.
func (h *TenantHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	roomID, _ := strconv.ParseUint(c.QueryParam("room_id"), 10, 32)

	tenants, total, err := h.tenants.ListTenants(services.TenantListFilter{
		Status:   models.TenantStatus(c.QueryParam("status")),
		RoomID:   uint(roomID),
		Search:   c.QueryParam("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, listResponse{Items: tenants, Total: total, Page: page})
}

// Get returns one tenant.
func (h *TenantHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	tenant, err := h.tenants.GetTenantByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Me returns the caller's own open tenancy.
func (h *TenantHandler) Me(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Update edits mutable tenant fields.
func (h *TenantHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tenant, err := h.tenants.UpdateTenant(id, tenantInputFrom(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// CheckIn activates a Pending tenant.
func (h *TenantHandler) CheckIn(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	tenant, err := h.tenants.CheckIn(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// UpdateStatus applies an explicit status transition.
func (h *TenantHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req tenantStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	tenant, err := h.tenants.UpdateStatus(id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// Delete removes a tenant that never checked in.
func (h *TenantHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.tenants.DeleteTenant(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns occupancy counts and receivables.
func (h *TenantHandler) Stats(c echo.Context) error {
	stats, err := h.tenants.GetTenantStats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func tenantInputFrom(req tenantRequest) services.TenantInput {
	input := services.TenantInput{
		AccountID:           req.AccountID,
		RoomID:              req.RoomID,
		BedNumber:           req.BedNumber,
		LeaseEnd:            req.LeaseEnd,
		MonthlyRent:         req.MonthlyRent,
		Utilities:           req.Utilities,
		Deposit:             req.Deposit,
		EmergencyContact:    req.EmergencyContact,
		SpecialRequirements: req.SpecialRequirements,
		Notes:               req.Notes,
	}
	if req.LeaseStart != nil {
		input.LeaseStart = *req.LeaseStart
	} else {
		input.LeaseStart = time.Time{}
	}
	return input
}
