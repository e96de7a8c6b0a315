package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the state of a payment transaction.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusFailed    PaymentStatus = "Failed"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// PaymentMethod identifies how a payment was made.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCreditCard   PaymentMethod = "Credit Card"
	PaymentMethodDebitCard    PaymentMethod = "Debit Card"
	PaymentMethodCheck        PaymentMethod = "Check"
	PaymentMethodGCash        PaymentMethod = "GCash"
	PaymentMethodPayMaya      PaymentMethod = "PayMaya"
)

// NormalizePaymentMethod maps a case-insensitive method name to its
// canonical constant. Returns false when the method is unknown.
func NormalizePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range []PaymentMethod{
		PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard,
		PaymentMethodDebitCard, PaymentMethodCheck, PaymentMethodGCash, PaymentMethodPayMaya,
	} {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, true
		}
	}
	return "", false
}

// SelfServiceMethods are the methods a tenant may use for a
// self-reported pending payment awaiting staff confirmation.
func SelfServiceMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodGCash, PaymentMethodPayMaya}
}

// Payment is an immutable financial transaction event with a balance
// snapshot. A Pending payment holds balanceBefore == balanceAfter and
// mutates the ledger only at confirmation time.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	TenantID      uint            `gorm:"index:idx_payments_tenant_date,priority:1" json:"tenant_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	PaymentDate   time.Time       `gorm:"index:idx_payments_tenant_date,priority:2" json:"payment_date"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(30)" json:"payment_method"`
	Reference     string          `gorm:"type:varchar(255)" json:"reference,omitempty"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(10,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(10,2)" json:"balance_after"`
	ProcessedBy   *uint           `json:"processed_by,omitempty"`
	Status        PaymentStatus   `gorm:"type:varchar(20);default:'Completed';index" json:"status"`

	Tenant             Tenant   `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	ProcessedByAccount *Account `gorm:"foreignKey:ProcessedBy" json:"processed_by_account,omitempty"`
}
