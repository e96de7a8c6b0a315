package models

import (
	"time"

	"gorm.io/gorm"
)

// AnnouncementPriority orders announcements for display.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow      AnnouncementPriority = "Low"
	AnnouncementPriorityMedium   AnnouncementPriority = "Medium"
	AnnouncementPriorityHigh     AnnouncementPriority = "High"
	AnnouncementPriorityCritical AnnouncementPriority = "Critical"
)

// AnnouncementStatus is the publication state. Draft -> Published ->
// Suspended/Expired. A Published announcement cannot be deleted; it
// must be suspended first.
type AnnouncementStatus string

const (
	AnnouncementStatusDraft     AnnouncementStatus = "Draft"
	AnnouncementStatusPublished AnnouncementStatus = "Published"
	AnnouncementStatusSuspended AnnouncementStatus = "Suspended"
	AnnouncementStatusExpired   AnnouncementStatus = "Expired"
)

// Announcement is a broadcast message targeted at one or more roles.
type Announcement struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title       string               `gorm:"type:varchar(255)" json:"title"`
	Message     string               `gorm:"type:text" json:"message"`
	TargetRoles []Role               `gorm:"serializer:json" json:"target_roles"`
	Priority    AnnouncementPriority `gorm:"type:varchar(20);default:'Medium'" json:"priority"`
	Status      AnnouncementStatus   `gorm:"type:varchar(20);default:'Draft';index" json:"status"`
	ScheduledAt *time.Time           `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time           `json:"expires_at,omitempty"`
	CreatedBy   uint                 `gorm:"index" json:"created_by"`

	CreatedByAccount Account `gorm:"foreignKey:CreatedBy" json:"created_by_account,omitempty"`
}

// IsExpired reports whether the announcement is past its expiry.
func (a Announcement) IsExpired(now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}
