package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle is one calendar month's accrual record for one tenant.
// Rows are immutable once written, with one exception: a one-time
// deposit-correction backfill when an earlier cycle missed applying
// the deposit. The (tenant_id, cycle_month) unique index is the
// concurrency backstop against double-posting.
type BillingCycle struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID   uint   `gorm:"uniqueIndex:idx_billing_cycles_tenant_month,priority:1" json:"tenant_id"`
	CycleMonth string `gorm:"type:varchar(7);uniqueIndex:idx_billing_cycles_tenant_month,priority:2;index" json:"cycle_month"` // "YYYY-MM"

	PreviousBalance decimal.Decimal `gorm:"type:decimal(10,2)" json:"previous_balance"`
	DepositApplied  decimal.Decimal `gorm:"type:decimal(10,2)" json:"deposit_applied"`
	MonthlyCharges  decimal.Decimal `gorm:"type:decimal(10,2)" json:"monthly_charges"`
	PaymentsMade    decimal.Decimal `gorm:"type:decimal(10,2)" json:"payments_made"`
	FinalBalance    decimal.Decimal `gorm:"type:decimal(10,2)" json:"final_balance"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}
