package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// AuthHandler handles registration, login and self-service account
// endpoints.
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register creates a tenant account. Staff roles cannot be claimed
// through the public endpoint.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	account, err := h.accounts.Register(services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.RoleTenant,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

// CreateStaffAccount creates an account with a staff role.
func (h *AuthHandler) CreateStaffAccount(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	account, err := h.accounts.Register(services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, account)
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	account, token, err := h.accounts.Authenticate(req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   token,
		"account": account,
	})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	account, err := h.accounts.GetAccountByID(middleware.AccountID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, account)
}

// ChangePassword rotates the caller's password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.accounts.ChangePassword(middleware.AccountID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
