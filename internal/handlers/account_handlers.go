package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// AccountHandler handles staff-facing account administration.
type AccountHandler struct {
	accounts *services.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// List returns accounts, optionally filtered by role.
func (h *AccountHandler) List(c echo.Context) error {
	accounts, err := h.accounts.ListAccounts(models.Role(c.QueryParam("role")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accounts)
}

// Get returns one account.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	account, err := h.accounts.GetAccountByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateStatus overrides an account's status.
func (h *AccountHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req accountStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	account, err := h.accounts.UpdateStatus(id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// Delete removes an account with no open tenancy.
func (h *AccountHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteAccount(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
