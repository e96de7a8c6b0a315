package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TenantStatus represents the lifecycle state of a lease occupancy.
// Pending -> Active -> Checked Out; Active never re-enters Pending.
type TenantStatus string

const (
	TenantStatusPending    TenantStatus = "Pending"
	TenantStatusActive     TenantStatus = "Active"
	TenantStatusInactive   TenantStatus = "Inactive"
	TenantStatusCheckedOut TenantStatus = "Checked Out"
)

// Tenant is a lease occupancy record: one account renting one bed.
// At most one Active tenant may hold a given (room, bed) pair; the
// partial unique index backs the check-in conflict check.
type Tenant struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	AccountID uint `gorm:"index" json:"account_id"`
	RoomID    uint `gorm:"index:idx_tenants_room_bed,priority:1" json:"room_id"`
	BedNumber int  `gorm:"index:idx_tenants_room_bed,priority:2" json:"bed_number"`

	Status       TenantStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	CheckInDate  time.Time    `json:"check_in_date"`
	CheckOutDate *time.Time   `json:"check_out_date,omitempty"`
	LeaseStart   time.Time    `json:"lease_start"`
	LeaseEnd     *time.Time   `json:"lease_end,omitempty"`

	MonthlyRent        decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	Utilities          decimal.Decimal `gorm:"type:decimal(10,2)" json:"utilities"`
	Deposit            decimal.Decimal `gorm:"type:decimal(10,2)" json:"deposit"`
	DepositPaid        bool            `gorm:"default:false" json:"deposit_paid"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(10,2)" json:"outstanding_balance"`
	LastPaymentDate    *time.Time      `json:"last_payment_date,omitempty"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`

	EmergencyContact    map[string]interface{} `gorm:"serializer:json" json:"emergency_contact,omitempty"`
	SpecialRequirements string                 `gorm:"type:text" json:"special_requirements,omitempty"`
	Notes               string                 `gorm:"type:text" json:"notes,omitempty"`

	// Relationships (explicit foreign keys, loaded via Preload only)
	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Room    Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// IsActive reports whether the tenant currently occupies their bed.
func (t Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// TotalMonthlyCost returns rent plus utilities.
func (t Tenant) TotalMonthlyCost() decimal.Decimal {
	return t.MonthlyRent.Add(t.Utilities)
}
