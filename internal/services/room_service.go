package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

// RoomInput carries caller-supplied room fields. Pointer fields are
// applied only when set.
type RoomInput struct {
	RoomNumber  string
	Floor       *int
	Building    string
	RoomType    models.RoomType
	MonthlyRent *decimal.Decimal
	Utilities   *decimal.Decimal
	TotalBeds   *int
	Description string
}

// RoomStats summarizes the building's bed inventory.
type RoomStats struct {
	TotalRooms    int64 `json:"total_rooms"`
	TotalBeds     int   `json:"total_beds"`
	OccupiedBeds  int   `json:"occupied_beds"`
	AvailableBeds int   `json:"available_beds"`
	UnderRepair   int64 `json:"under_repair"`
}

// RoomService manages the room inventory. Occupancy counters are owned
// by the tenant lifecycle and archive transitions, not edited here.
type RoomService struct {
	db *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

// CreateRoom adds a room to the inventory.
func (s *RoomService) CreateRoom(input RoomInput) (*models.Room, error) {
	if input.RoomNumber == "" {
		return nil, apperr.Validation("room number is required")
	}
	room := models.Room{
		RoomNumber: input.RoomNumber,
		Building:   "Main Building",
		RoomType:   models.RoomTypeStandard,
		Status:     models.RoomStatusAvailable,
		TotalBeds:  4,
	}
	if input.Floor != nil {
		room.Floor = *input.Floor
	}
	if input.Building != "" {
		room.Building = input.Building
	}
	if input.RoomType != "" {
		room.RoomType = input.RoomType
	}
	if input.MonthlyRent != nil {
		room.MonthlyRent = input.MonthlyRent.Round(2)
	}
	if input.Utilities != nil {
		room.Utilities = input.Utilities.Round(2)
	}
	if input.TotalBeds != nil {
		if *input.TotalBeds < 1 {
			return nil, apperr.Validation("room must have at least one bed")
		}
		room.TotalBeds = *input.TotalBeds
	}
	room.Description = input.Description

	if err := s.db.Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("room number %s already exists", input.RoomNumber)
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &room, nil
}

// GetRoomByID returns a single room.
func (s *RoomService) GetRoomByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("room %d not found", id)
		}
		return nil, err
	}
	return &room, nil
}

// ListRooms returns rooms, optionally filtered by status, ordered by
// building and room number.
func (s *RoomService) ListRooms(status models.RoomStatus) ([]models.Room, error) {
	q := s.db.Model(&models.Room{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rooms []models.Room
	err := q.Order("building ASC, room_number ASC").Find(&rooms).Error
	return rooms, err
}

// GetAvailableRooms returns rooms that can take another tenant.
func (s *RoomService) GetAvailableRooms() ([]models.Room, error) {
	var rooms []models.Room
	err := s.db.Where("occupied_beds < total_beds AND status <> ?", models.RoomStatusMaintenance).
		Order("building ASC, room_number ASC").Find(&rooms).Error
	return rooms, err
}

// UpdateRoom modifies mutable room fields. Shrinking below the current
// occupancy is rejected.
func (s *RoomService) UpdateRoom(id uint, input RoomInput) (*models.Room, error) {
	var room models.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("room %d not found", id)
			}
			return fmt.Errorf("load room: %w", err)
		}

		updates := map[string]interface{}{}
		if input.RoomNumber != "" && input.RoomNumber != room.RoomNumber {
			updates["room_number"] = input.RoomNumber
		}
		if input.Floor != nil {
			updates["floor"] = *input.Floor
		}
		if input.Building != "" {
			updates["building"] = input.Building
		}
		if input.RoomType != "" {
			updates["room_type"] = input.RoomType
		}
		if input.MonthlyRent != nil {
			if input.MonthlyRent.IsNegative() {
				return apperr.Validation("monthly rent cannot be negative")
			}
			updates["monthly_rent"] = input.MonthlyRent.Round(2)
		}
		if input.Utilities != nil {
			if input.Utilities.IsNegative() {
				return apperr.Validation("utilities cannot be negative")
			}
			updates["utilities"] = input.Utilities.Round(2)
		}
		if input.TotalBeds != nil {
			if *input.TotalBeds < room.OccupiedBeds {
				return apperr.Conflict("room %s has %d occupied beds, cannot shrink to %d",
					room.RoomNumber, room.OccupiedBeds, *input.TotalBeds)
			}
			updates["total_beds"] = *input.TotalBeds
			room.TotalBeds = *input.TotalBeds
			room.RecomputeStatus()
			updates["status"] = room.Status
		}
		if input.Description != "" {
			updates["description"] = input.Description
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&room).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("room number %s already exists", input.RoomNumber)
			}
			return fmt.Errorf("update room: %w", err)
		}
		return tx.First(&room, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SetMaintenance marks a room under repair or returns it to the
// occupancy-derived status.
func (s *RoomService) SetMaintenance(id uint, underRepair bool) (*models.Room, error) {
	var room models.Room
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("room %d not found", id)
			}
			return fmt.Errorf("load room: %w", err)
		}
		if underRepair {
			room.Status = models.RoomStatusMaintenance
		} else {
			room.Status = models.RoomStatusAvailable
			room.RecomputeStatus()
		}
		return tx.Model(&room).Update("status", room.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// DeleteRoom removes an empty room from the inventory.
func (s *RoomService) DeleteRoom(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("room %d not found", id)
			}
			return fmt.Errorf("load room: %w", err)
		}
		if room.OccupiedBeds > 0 {
			return apperr.Conflict("room %s still has %d occupied beds", room.RoomNumber, room.OccupiedBeds)
		}
		var open int64
		if err := tx.Model(&models.Tenant{}).
			Where("room_id = ? AND status IN ?", id,
				[]models.TenantStatus{models.TenantStatusPending, models.TenantStatusActive}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return apperr.Conflict("room %s has pending tenant assignments", room.RoomNumber)
		}
		return tx.Delete(&room).Error
	})
}

// GetRoomStats aggregates the bed inventory.
func (s *RoomService) GetRoomStats() (*RoomStats, error) {
	stats := &RoomStats{}
	if err := s.db.Model(&models.Room{}).Count(&stats.TotalRooms).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Room{}).
		Where("status = ?", models.RoomStatusMaintenance).
		Count(&stats.UnderRepair).Error; err != nil {
		return nil, err
	}

	var rooms []models.Room
	if err := s.db.Select("total_beds", "occupied_beds").Find(&rooms).Error; err != nil {
		return nil, err
	}
	for _, r := range rooms {
		stats.TotalBeds += r.TotalBeds
		stats.OccupiedBeds += r.OccupiedBeds
	}
	stats.AvailableBeds = stats.TotalBeds - stats.OccupiedBeds
	return stats, nil
}
