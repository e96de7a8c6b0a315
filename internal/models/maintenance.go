package models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenancePriority ranks the urgency of a request.
type MaintenancePriority string

const (
	MaintenancePriorityLow    MaintenancePriority = "Low"
	MaintenancePriorityMedium MaintenancePriority = "Medium"
	MaintenancePriorityHigh   MaintenancePriority = "High"
)

// MaintenanceStatus tracks the repair lifecycle.
type MaintenanceStatus string

const (
	MaintenanceStatusPending MaintenanceStatus = "Pending"
	MaintenanceStatusOngoing MaintenanceStatus = "Ongoing"
	MaintenanceStatusFixed   MaintenanceStatus = "Fixed"
)

// MaintenanceRequest is a repair ticket filed by a tenant for a room.
type MaintenanceRequest struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TenantID    uint                `gorm:"index" json:"tenant_id"`
	RoomID      uint                `gorm:"index" json:"room_id"`
	Title       string              `gorm:"type:varchar(255)" json:"title"`
	Description string              `gorm:"type:text" json:"description,omitempty"`
	Priority    MaintenancePriority `gorm:"type:varchar(20);default:'Low'" json:"priority"`
	Status      MaintenanceStatus   `gorm:"type:varchar(20);default:'Pending';index" json:"status"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Room   Room   `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
