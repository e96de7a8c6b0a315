package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType groups notifications by the subsystem that emitted them.
type NotificationType string

const (
	NotificationTypePayment     NotificationType = "PAYMENT"
	NotificationTypeBilling     NotificationType = "BILLING"
	NotificationTypeTenant      NotificationType = "TENANT"
	NotificationTypeAccount     NotificationType = "ACCOUNT"
	NotificationTypeMaintenance NotificationType = "MAINTENANCE"
	NotificationTypeSystem      NotificationType = "SYSTEM"
)

// Notification is an in-app message for a role or a specific account.
// Delivery is fire-and-forget: failures are logged by callers and never
// abort a ledger transaction.
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	RecipientRole      Role                   `gorm:"type:varchar(20);index" json:"recipient_role"`
	RecipientAccountID *uint                  `gorm:"index" json:"recipient_account_id,omitempty"`
	TenantID           *uint                  `gorm:"index" json:"tenant_id,omitempty"`
	Type               NotificationType       `gorm:"type:varchar(64)" json:"type"`
	Title              string                 `gorm:"type:varchar(255)" json:"title"`
	Message            string                 `gorm:"type:text" json:"message"`
	Metadata           map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	IsRead             bool                   `gorm:"default:false;index" json:"is_read"`
}
