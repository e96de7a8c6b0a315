package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

// PaymentInput carries the caller-supplied fields of a payment.
type PaymentInput struct {
	Amount      decimal.Decimal
	Method      string
	Reference   string
	Description string
	ProcessedBy *uint
}

// TenantBillingInfo is the accounting-page view of one tenant's ledger
// state.
type TenantBillingInfo struct {
	TenantID           uint            `json:"tenant_id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	RoomNumber         string          `json:"room_number"`
	Floor              int             `json:"floor"`
	Building           string          `json:"building"`
	MonthlyRent        decimal.Decimal `json:"monthly_rent"`
	Utilities          decimal.Decimal `json:"utilities"`
	TotalMonthlyCost   decimal.Decimal `json:"total_monthly_cost"`
	Deposit            decimal.Decimal `json:"deposit"`
	DepositPaid        bool            `json:"deposit_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	LastPaymentDate    *time.Time      `json:"last_payment_date,omitempty"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`
	LeaseStart         time.Time       `json:"lease_start"`
	LeaseEnd           *time.Time      `json:"lease_end,omitempty"`
	Status             models.TenantStatus `json:"status"`
}

// PaymentStats aggregates completed payments, overall and per month.
type PaymentStats struct {
	TotalPayments int64           `json:"total_payments"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	MonthlyStats  []MonthlyStat   `json:"monthly_stats"`
}

// MonthlyStat is one month's payment aggregate.
type MonthlyStat struct {
	Month        string          `json:"month"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentCount int             `json:"payment_count"`
}

// PaymentService records tenant payments and adjusts the running
// balance. Direct recordings complete immediately; tenant-initiated
// payments go through a pending/confirm flow and touch the ledger only
// at confirmation time.
type PaymentService struct {
	db            *gorm.DB
	billing       *BillingService
	notifications *NotificationService
}

func NewPaymentService(db *gorm.DB, billing *BillingService, notifications *NotificationService) *PaymentService {
	return &PaymentService{db: db, billing: billing, notifications: notifications}
}

// RecordPayment atomically creates a Completed payment and moves the
// tenant balance down by the amount.
func (s *PaymentService) RecordPayment(tenantID uint, input PaymentInput) (*models.Payment, error) {
	method, ok := models.NormalizePaymentMethod(input.Method)
	if !ok {
		return nil, apperr.Validation("unknown payment method %q", input.Method)
	}
	if !input.Amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be greater than 0")
	}

	var payment models.Payment
	var tenant models.Tenant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tenant, tenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", tenantID)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if !tenant.IsActive() {
			return apperr.Validation("cannot record payment for inactive tenant")
		}

		amount := input.Amount.Round(2)
		balanceBefore := tenant.OutstandingBalance.Round(2)
		balanceAfter := balanceBefore.Sub(amount)
		now := time.Now()

		reference := input.Reference
		if reference == "" {
			reference = uuid.NewString()
		}

		payment = models.Payment{
			TenantID:      tenant.ID,
			Amount:        amount,
			PaymentDate:   now,
			PaymentMethod: method,
			Reference:     reference,
			Description:   input.Description,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			ProcessedBy:   input.ProcessedBy,
			Status:        models.PaymentStatusCompleted,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		if err := tx.Model(&tenant).Updates(map[string]interface{}{
			"outstanding_balance": balanceAfter,
			"last_payment_date":   now,
		}).Error; err != nil {
			return fmt.Errorf("update tenant balance: %w", err)
		}
		tenant.OutstandingBalance = balanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.PaymentReceived(&tenant, &payment)
	return &payment, nil
}

// CreatePendingPayment creates a tenant self-reported payment awaiting
// staff confirmation. The balance snapshot is taken but not applied.
func (s *PaymentService) CreatePendingPayment(tenantID uint, input PaymentInput) (*models.Payment, error) {
	method, ok := models.NormalizePaymentMethod(input.Method)
	if !ok {
		return nil, apperr.Validation("unknown payment method %q", input.Method)
	}
	allowed := false
	for _, m := range models.SelfServiceMethods() {
		if m == method {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Validation("method %s is not allowed for self-reported payments", method)
	}
	if !input.Amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be greater than 0")
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %d not found", tenantID)
		}
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	if !tenant.IsActive() {
		return nil, apperr.Validation("cannot create payment for inactive tenant")
	}

	balance := tenant.OutstandingBalance.Round(2)
	payment := models.Payment{
		TenantID:      tenant.ID,
		Amount:        input.Amount.Round(2),
		PaymentDate:   time.Now(),
		PaymentMethod: method,
		Reference:     input.Reference,
		Description:   input.Description,
		BalanceBefore: balance,
		BalanceAfter:  balance,
		Status:        models.PaymentStatusPending,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, fmt.Errorf("create pending payment: %w", err)
	}

	s.notifications.PendingPaymentSubmitted(&tenant, &payment)
	return &payment, nil
}

// ConfirmPayment applies a pending payment to the ledger. This is the
// only point at which a pending payment affects the balance.
func (s *PaymentService) ConfirmPayment(paymentID uint, processedBy uint) (*models.Payment, error) {
	var payment models.Payment
	var tenant models.Tenant

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("payment %d not found", paymentID)
			}
			return fmt.Errorf("load payment: %w", err)
		}
		if payment.Status != models.PaymentStatusPending {
			return apperr.InvalidState("payment %d is %s, not Pending", payment.ID, payment.Status)
		}

		if err := tx.First(&tenant, payment.TenantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("tenant %d not found", payment.TenantID)
			}
			return fmt.Errorf("load tenant: %w", err)
		}
		if !tenant.IsActive() {
			return apperr.InvalidState("cannot confirm payment for inactive tenant")
		}

		now := time.Now()
		balanceBefore := tenant.OutstandingBalance.Round(2)
		balanceAfter := balanceBefore.Sub(payment.Amount)

		if err := tx.Model(&payment).Updates(map[string]interface{}{
			"status":         models.PaymentStatusCompleted,
			"processed_by":   processedBy,
			"payment_date":   now,
			"balance_before": balanceBefore,
			"balance_after":  balanceAfter,
		}).Error; err != nil {
			return fmt.Errorf("confirm payment: %w", err)
		}
		payment.Status = models.PaymentStatusCompleted
		payment.ProcessedBy = &processedBy
		payment.BalanceBefore = balanceBefore
		payment.BalanceAfter = balanceAfter

		if err := tx.Model(&tenant).Updates(map[string]interface{}{
			"outstanding_balance": balanceAfter,
			"last_payment_date":   now,
		}).Error; err != nil {
			return fmt.Errorf("update tenant balance: %w", err)
		}
		tenant.OutstandingBalance = balanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.PaymentReceived(&tenant, &payment)
	return &payment, nil
}

// ProcessPayment accrues current-month charges for the tenant first,
// then records the payment against the up-to-date balance.
func (s *PaymentService) ProcessPayment(tenantID uint, input PaymentInput) (*models.Payment, error) {
	if err := s.billing.AccrueTenant(tenantID); err != nil {
		return nil, err
	}
	return s.RecordPayment(tenantID, input)
}

// GetPaymentByID returns a payment with tenant and processor details.
func (s *PaymentService) GetPaymentByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Tenant").Preload("Tenant.Account").Preload("Tenant.Room").
		Preload("ProcessedByAccount").First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment %d not found", id)
		}
		return nil, err
	}
	return &payment, nil
}

// GetPaymentsByTenant returns the tenant's payment history, newest first.
func (s *PaymentService) GetPaymentsByTenant(tenantID uint, limit int) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	var payments []models.Payment
	err := s.db.Where("tenant_id = ?", tenantID).
		Preload("ProcessedByAccount").
		Order("payment_date DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

// GetRecentPayments returns the latest payments across all tenants.
func (s *PaymentService) GetRecentPayments(limit int) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 10
	}
	var payments []models.Payment
	err := s.db.Preload("Tenant").Preload("Tenant.Account").Preload("Tenant.Room").
		Preload("ProcessedByAccount").
		Order("payment_date DESC").Limit(limit).Find(&payments).Error
	return payments, err
}

// GetPaymentStats aggregates completed payments, optionally scoped to
// one tenant. Monthly buckets cover the last 12 months and are grouped
// in Go to stay portable across database dialects.
func (s *PaymentService) GetPaymentStats(tenantID *uint) (*PaymentStats, error) {
	q := s.db.Model(&models.Payment{})
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var completed []models.Payment
	if err := q.Session(&gorm.Session{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Find(&completed).Error; err != nil {
		return nil, err
	}

	stats := &PaymentStats{TotalPayments: total, TotalAmount: decimal.Zero}
	buckets := make(map[string]*MonthlyStat)
	for i := range completed {
		p := &completed[i]
		stats.TotalAmount = stats.TotalAmount.Add(p.Amount)
		month := CycleMonth(p.PaymentDate)
		b, ok := buckets[month]
		if !ok {
			b = &MonthlyStat{Month: month, TotalAmount: decimal.Zero}
			buckets[month] = b
		}
		b.TotalAmount = b.TotalAmount.Add(p.Amount)
		b.PaymentCount++
	}

	cutoff := time.Now().AddDate(0, -11, 0)
	for m := 0; m < 12; m++ {
		month := CycleMonth(cutoff.AddDate(0, m, 0))
		if b, ok := buckets[month]; ok {
			stats.MonthlyStats = append(stats.MonthlyStats, *b)
		}
	}
	return stats, nil
}

// GetTenantBillingInfo accrues the tenant's current month and returns
// the ledger view.
func (s *PaymentService) GetTenantBillingInfo(tenantID uint) (*TenantBillingInfo, error) {
	if err := s.billing.AccrueTenant(tenantID); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err := s.db.Preload("Account").Preload("Room").First(&tenant, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %d not found", tenantID)
		}
		return nil, err
	}

	info := billingInfoFrom(&tenant)
	return &info, nil
}

// GetTenantsWithBillingInfo accrues every active tenant and returns the
// accounting-page ledger list ordered by balance owed.
func (s *PaymentService) GetTenantsWithBillingInfo() ([]TenantBillingInfo, error) {
	if _, err := s.billing.AccrueAllActive(); err != nil {
		return nil, err
	}

	var tenants []models.Tenant
	err := s.db.Where("status = ?", models.TenantStatusActive).
		Preload("Account").Preload("Room").
		Order("outstanding_balance DESC, next_due_date ASC").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}

	infos := make([]TenantBillingInfo, 0, len(tenants))
	for i := range tenants {
		infos = append(infos, billingInfoFrom(&tenants[i]))
	}
	return infos, nil
}

func billingInfoFrom(t *models.Tenant) TenantBillingInfo {
	return TenantBillingInfo{
		TenantID:           t.ID,
		Name:               t.Account.FullName(),
		Email:              t.Account.Email,
		RoomNumber:         t.Room.RoomNumber,
		Floor:              t.Room.Floor,
		Building:           t.Room.Building,
		MonthlyRent:        t.MonthlyRent,
		Utilities:          t.Utilities,
		TotalMonthlyCost:   t.TotalMonthlyCost(),
		Deposit:            t.Deposit,
		DepositPaid:        t.DepositPaid,
		OutstandingBalance: t.OutstandingBalance,
		LastPaymentDate:    t.LastPaymentDate,
		NextDueDate:        t.NextDueDate,
		LeaseStart:         t.LeaseStart,
		LeaseEnd:           t.LeaseEnd,
		Status:             t.Status,
	}
}
