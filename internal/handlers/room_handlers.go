package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// RoomHandler handles room inventory endpoints.
type RoomHandler struct {
	rooms *services.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create adds a room.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	room, err := h.rooms.CreateRoom(roomInputFrom(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

// List returns rooms, optionally filtered by status.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.rooms.ListRooms(models.RoomStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

// Available returns rooms that can take another tenant.
func (h *RoomHandler) Available(c echo.Context) error {
	rooms, err := h.rooms.GetAvailableRooms()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get returns one room.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	room, err := h.rooms.GetRoomByID(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

// Update edits mutable room fields.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req roomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	room, err := h.rooms.UpdateRoom(id, roomInputFrom(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

// SetMaintenance toggles the room's repair state.
func (h *RoomHandler) SetMaintenance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req maintenanceModeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	room, err := h.rooms.SetMaintenance(id, req.UnderRepair)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

// Delete removes an empty room.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.rooms.DeleteRoom(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns the bed inventory aggregate.
func (h *RoomHandler) Stats(c echo.Context) error {
	stats, err := h.rooms.GetRoomStats()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func roomInputFrom(req roomRequest) services.RoomInput {
	return services.RoomInput{
		RoomNumber:  req.RoomNumber,
		Floor:       req.Floor,
		Building:    req.Building,
		RoomType:    req.RoomType,
		MonthlyRent: req.MonthlyRent,
		Utilities:   req.Utilities,
		TotalBeds:   req.TotalBeds,
		Description: req.Description,
	}
}
