package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Archive is the terminal snapshot of a tenant taken at checkout. It
// mirrors the tenant's ledger-relevant fields and is owned by no live
// entity once created; restoring removes the archive row again.
type Archive struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TenantID  uint `gorm:"index" json:"tenant_id"`
	AccountID uint `gorm:"index" json:"account_id"`
	RoomID    uint `gorm:"index" json:"room_id"`
	BedNumber int  `json:"bed_number"`

	CheckInDate  time.Time  `json:"check_in_date"`
	CheckOutDate time.Time  `gorm:"index" json:"check_out_date"`
	LeaseStart   time.Time  `json:"lease_start"`
	LeaseEnd     *time.Time `json:"lease_end,omitempty"`

	MonthlyRent  decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	Utilities    decimal.Decimal `gorm:"type:decimal(10,2)" json:"utilities"`
	Deposit      decimal.Decimal `gorm:"type:decimal(10,2)" json:"deposit"`
	DepositPaid  bool            `json:"deposit_paid"`
	FinalBalance decimal.Decimal `gorm:"type:decimal(10,2)" json:"final_balance"`

	EmergencyContact    map[string]interface{} `gorm:"serializer:json" json:"emergency_contact,omitempty"`
	SpecialRequirements string                 `gorm:"type:text" json:"special_requirements,omitempty"`
	Notes               string                 `gorm:"type:text" json:"notes,omitempty"`

	ArchivedBy    *uint  `gorm:"index" json:"archived_by,omitempty"`
	ArchiveReason string `gorm:"type:varchar(255)" json:"archive_reason,omitempty"`

	Account           Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Room              Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	ArchivedByAccount *Account `gorm:"foreignKey:ArchivedBy" json:"archived_by_account,omitempty"`
}

// StayDuration returns the length of the stay in days.
func (a Archive) StayDuration() int {
	d := a.CheckOutDate.Sub(a.CheckInDate)
	if d < 0 {
		d = -d
	}
	return int(d.Hours()/24 + 0.999)
}
