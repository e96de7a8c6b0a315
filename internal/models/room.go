package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomType categorizes the room tier.
type RoomType string

const (
	RoomTypeStandard RoomType = "Standard"
	RoomTypePremium  RoomType = "Premium"
	RoomTypeDeluxe   RoomType = "Deluxe"
)

// RoomStatus is derived from occupancy except for Maintenance and
// Reserved, which are set manually.
type RoomStatus string

const (
	RoomStatusAvailable         RoomStatus = "Available"
	RoomStatusPartiallyOccupied RoomStatus = "Partially Occupied"
	RoomStatusFullyOccupied     RoomStatus = "Fully Occupied"
	RoomStatusMaintenance       RoomStatus = "Maintenance"
	RoomStatusReserved          RoomStatus = "Reserved"
)

// Room is a rentable unit holding a fixed number of beds.
type Room struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	RoomNumber   string          `gorm:"type:varchar(20);uniqueIndex" json:"room_number"`
	Floor        int             `json:"floor"`
	Building     string          `gorm:"type:varchar(100);default:'Main Building'" json:"building"`
	RoomType     RoomType        `gorm:"type:varchar(20);default:'Standard'" json:"room_type"`
	Status       RoomStatus      `gorm:"type:varchar(30);default:'Available'" json:"status"`
	MonthlyRent  decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	Utilities    decimal.Decimal `gorm:"type:decimal(10,2)" json:"utilities"`
	TotalBeds    int             `gorm:"default:4" json:"total_beds"`
	OccupiedBeds int             `gorm:"default:0" json:"occupied_beds"`
	Description  string          `gorm:"type:text" json:"description,omitempty"`
}

// AvailableBeds returns the number of unoccupied beds.
func (r Room) AvailableBeds() int {
	return r.TotalBeds - r.OccupiedBeds
}

// IsAvailable reports whether the room can take another tenant.
func (r Room) IsAvailable() bool {
	return r.OccupiedBeds < r.TotalBeds && r.Status != RoomStatusMaintenance
}

// AddTenant increments occupancy and recomputes status. Returns false
// when the room is already full.
func (r *Room) AddTenant() bool {
	if r.OccupiedBeds >= r.TotalBeds {
		return false
	}
	r.OccupiedBeds++
	r.RecomputeStatus()
	return true
}

// RemoveTenant decrements occupancy and recomputes status. Returns
// false when the room is already empty.
func (r *Room) RemoveTenant() bool {
	if r.OccupiedBeds <= 0 {
		return false
	}
	r.OccupiedBeds--
	r.RecomputeStatus()
	return true
}

// RecomputeStatus derives the aggregate status from occupancy.
// Maintenance is preserved until cleared manually.
func (r *Room) RecomputeStatus() {
	if r.Status == RoomStatusMaintenance {
		return
	}
	switch {
	case r.OccupiedBeds <= 0:
		r.Status = RoomStatusAvailable
	case r.OccupiedBeds >= r.TotalBeds:
		r.Status = RoomStatusFullyOccupied
	default:
		r.Status = RoomStatusPartiallyOccupied
	}
}
