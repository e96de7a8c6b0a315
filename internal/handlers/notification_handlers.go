package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/services"
)

// NotificationHandler handles in-app notification endpoints.
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications.
func (h *NotificationHandler) List(c echo.Context) error {
	unreadOnly := c.QueryParam("unread") == "true"
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	notifications, err := h.notifications.ListForAccount(
		middleware.AccountID(c), middleware.Role(c), unreadOnly, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns the caller's unread notification count.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(middleware.AccountID(c), middleware.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread": count})
}

// MarkRead marks one notification read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead marks all of the caller's notifications read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	if err := h.notifications.MarkAllRead(middleware.AccountID(c), middleware.Role(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
