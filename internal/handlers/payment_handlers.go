package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/services"
)

// PaymentHandler handles billing and payment endpoints.
type PaymentHandler struct {
	payments *services.PaymentService
	billing  *services.BillingService
	tenants  *services.TenantService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *services.PaymentService, billing *services.BillingService, tenants *services.TenantService) *PaymentHandler {
	return &PaymentHandler{payments: payments, billing: billing, tenants: tenants}
}

// Process accrues the tenant's current cycle and records a completed
// payment against the refreshed balance.
func (h *PaymentHandler) Process(c echo.Context) error {
	tenantID, err := pathID(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	processedBy := middleware.AccountID(c)
	payment, err := h.payments.ProcessPayment(tenantID, services.PaymentInput{
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   req.Reference,
		Description: req.Description,
		ProcessedBy: &processedBy,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// SubmitOwn lets the authenticated tenant file a self-reported payment
// awaiting staff confirmation.
func (h *PaymentHandler) SubmitOwn(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	payment, err := h.payments.CreatePendingPayment(tenant.ID, services.PaymentInput{
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   req.Reference,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// Confirm applies a pending payment to the ledger.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	paymentID, err := pathID(c)
	if err != nil {
		return err
	}
	payment, err := h.payments.ConfirmPayment(paymentID, middleware.AccountID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// Get returns one payment.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	payment, err := h.payments.GetPaymentByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// History returns a tenant's payment history.
func (h *PaymentHandler) History(c echo.Context) error {
	tenantID, err := pathID(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	payments, err := h.payments.GetPaymentsByTenant(tenantID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// OwnHistory returns the authenticated tenant's payment history.
func (h *PaymentHandler) OwnHistory(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	payments, err := h.payments.GetPaymentsByTenant(tenant.ID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// Recent returns the latest payments across all tenants.
func (h *PaymentHandler) Recent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	payments, err := h.payments.GetRecentPayments(limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}

// Stats returns payment aggregates, optionally scoped to one tenant.
func (h *PaymentHandler) Stats(c echo.Context) error {
	var tenantID *uint
	if raw := c.QueryParam("tenant_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant_id")
		}
		id := uint(parsed)
		tenantID = &id
	}
	stats, err := h.payments.GetPaymentStats(tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// BillingInfo accrues and returns one tenant's ledger view.
func (h *PaymentHandler) BillingInfo(c echo.Context) error {
	tenantID, err := pathID(c)
	if err != nil {
		return err
	}
	info, err := h.payments.GetTenantBillingInfo(tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// OwnBillingInfo accrues and returns the caller's own ledger view.
func (h *PaymentHandler) OwnBillingInfo(c echo.Context) error {
	tenant, err := h.tenants.GetTenantByAccountID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	info, err := h.payments.GetTenantBillingInfo(tenant.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

// AllBillingInfo accrues every active tenant and returns the ledger list.
func (h *PaymentHandler) AllBillingInfo(c echo.Context) error {
	infos, err := h.payments.GetTenantsWithBillingInfo()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, infos)
}

// BillingHistory returns a tenant's immutable billing cycles.
func (h *PaymentHandler) BillingHistory(c echo.Context) error {
	tenantID, err := pathID(c)
	if err != nil {
		return err
	}
	cycles, err := h.billing.GetCyclesByTenant(tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cycles)
}
