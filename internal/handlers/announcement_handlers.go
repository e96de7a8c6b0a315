package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// AnnouncementHandler handles announcement endpoints.
type AnnouncementHandler struct {
	announcements *services.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcements *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// Create drafts an announcement.
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	announcement, err := h.announcements.CreateAnnouncement(announcementInputFrom(req), middleware.AccountID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, announcement)
}

// List returns announcements for staff, optionally filtered by status.
func (h *AnnouncementHandler) List(c echo.Context) error {
	announcements, err := h.announcements.ListAnnouncements(models.AnnouncementStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcements)
}

// Feed returns published announcements visible to the caller's role.
func (h *AnnouncementHandler) Feed(c echo.Context) error {
	announcements, err := h.announcements.ListActiveForRole(middleware.Role(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcements)
}

// Get returns one announcement.
func (h *AnnouncementHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	announcement, err := h.announcements.GetAnnouncementByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcement)
}

// Update edits a non-published announcement.
func (h *AnnouncementHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req announcementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	announcement, err := h.announcements.UpdateAnnouncement(id, announcementInputFrom(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcement)
}

// Publish moves an announcement live.
func (h *AnnouncementHandler) Publish(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	announcement, err := h.announcements.Publish(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcement)
}

// Suspend takes a published announcement off the air.
func (h *AnnouncementHandler) Suspend(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	announcement, err := h.announcements.Suspend(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, announcement)
}

// Delete removes a non-published announcement.
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.announcements.DeleteAnnouncement(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func announcementInputFrom(req announcementRequest) services.AnnouncementInput {
	return services.AnnouncementInput{
		Title:       req.Title,
		Message:     req.Message,
		TargetRoles: req.TargetRoles,
		Priority:    req.Priority,
		ScheduledAt: req.ScheduledAt,
		ExpiresAt:   req.ExpiresAt,
	}
}
