package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/middleware"
	"bcflats_backend/internal/services"
)

// ArchiveHandler handles checkout and archive endpoints.
type ArchiveHandler struct {
	archives *services.ArchiveService
}

// NewArchiveHandler creates a new ArchiveHandler.
func NewArchiveHandler(archives *services.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{archives: archives}
}

// CheckOut archives an active tenant.
func (h *ArchiveHandler) CheckOut(c echo.Context) error {
	tenantID, err := pathID(c)
	if err != nil {
		return err
	}
	var req archiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	archivedBy := middleware.AccountID(c)
	archive, err := h.archives.ArchiveTenant(tenantID, &archivedBy, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, archive)
}

// Restore reverses a checkout.
func (h *ArchiveHandler) Restore(c echo.Context) error {
	archiveID, err := pathID(c)
	if err != nil {
		return err
	}
	tenant, err := h.archives.RestoreTenant(archiveID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenant)
}

// List returns archives matching the query filters.
func (h *ArchiveHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	roomID, _ := strconv.ParseUint(c.QueryParam("room_id"), 10, 32)

	filter := services.ArchiveListFilter{
		Search:   c.QueryParam("search"),
		RoomID:   uint(roomID),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		filter.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		filter.To = &to
	}

	archives, total, err := h.archives.ListArchives(filter)
	if err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, listResponse{Items: archives, Total: total, Page: page})
}

// Get returns one archive.
func (h *ArchiveHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	archive, err := h.archives.GetArchiveByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, archive)
}

// Delete permanently removes an archive record.
func (h *ArchiveHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.archives.DeleteArchive(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns the archive aggregate.
func (h *ArchiveHandler) Stats(c echo.Context) error {
	stats, err := h.archives.GetArchiveStats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
