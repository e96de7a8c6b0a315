package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
)

// BillingService posts monthly rent+utilities charges and applies the
// one-time security deposit credit. Accrual is idempotent per tenant
// per calendar month and must run before any balance-dependent read.
//
// Deposit policy: the deposit is applied once, against the current
// month's charges only, capped at min(deposit, monthlyCharges). It is
// never applied against standing arrears.
type BillingService struct {
	db            *gorm.DB
	notifications *NotificationService
	now           func() time.Time
}

func NewBillingService(db *gorm.DB, notifications *NotificationService) *BillingService {
	return &BillingService{db: db, notifications: notifications, now: time.Now}
}

// CycleMonth formats a point in time as the "YYYY-MM" cycle key.
func CycleMonth(t time.Time) string {
	return t.Format("2006-01")
}

// AccrueTenant ensures the tenant has a BillingCycle for the current
// calendar month, posting charges if missing. Inactive tenants are a
// no-op. Safe to call repeatedly.
func (s *BillingService) AccrueTenant(tenantID uint) error {
	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("tenant %d not found", tenantID)
		}
		return fmt.Errorf("load tenant: %w", err)
	}

	if !tenant.IsActive() {
		return nil
	}

	return s.accrueOne(&tenant)
}

// AccrueAllActive runs the accrual for every Active tenant. Tenants are
// processed independently: one failure is logged and does not abort the
// remaining postings. Returns the number of tenants processed without
// error.
func (s *BillingService) AccrueAllActive() (int, error) {
	var tenants []models.Tenant
	if err := s.db.Where("status = ?", models.TenantStatusActive).Find(&tenants).Error; err != nil {
		return 0, fmt.Errorf("list active tenants: %w", err)
	}

	ok := 0
	for i := range tenants {
		if err := s.accrueOne(&tenants[i]); err != nil {
			logger.Get().Error("accrual failed for tenant",
				zap.Uint("tenant_id", tenants[i].ID), zap.Error(err))
			continue
		}
		ok++
	}
	return ok, nil
}

// GetCyclesByTenant returns the tenant's billing history, newest
// cycle first.
func (s *BillingService) GetCyclesByTenant(tenantID uint) ([]models.BillingCycle, error) {
	var cycles []models.BillingCycle
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("cycle_month DESC").Find(&cycles).Error
	return cycles, err
}

// accrueOne performs the per-tenant check-and-create inside one
// transaction. The (tenant_id, cycle_month) unique index is the
// backstop for concurrent invocations: a duplicate-key failure from a
// racing writer is treated as "already accrued".
func (s *BillingService) accrueOne(tenant *models.Tenant) error {
	month := CycleMonth(s.now())

	var posted *models.BillingCycle
	var corrected *models.BillingCycle
	var correctionAmount decimal.Decimal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction so the balance we chain from
		// is the committed one.
		var t models.Tenant
		if err := tx.First(&t, tenant.ID).Error; err != nil {
			return fmt.Errorf("load tenant: %w", err)
		}

		var existing models.BillingCycle
		err := tx.Where("tenant_id = ? AND cycle_month = ?", t.ID, month).First(&existing).Error
		switch {
		case err == nil:
			cycle, amount, corrErr := s.correctDepositIfMissed(tx, &t, &existing)
			if corrErr != nil {
				return corrErr
			}
			corrected, correctionAmount = cycle, amount
			*tenant = t
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("lookup billing cycle: %w", err)
		}

		previousBalance := t.OutstandingBalance.Round(2)
		monthlyCharges := t.TotalMonthlyCost().Round(2)

		depositApplied := decimal.Zero
		if t.Deposit.IsPositive() {
			applied, err := s.depositEverApplied(tx, t.ID)
			if err != nil {
				return err
			}
			if !applied {
				depositApplied = decimal.Min(t.Deposit, monthlyCharges).Round(2)
			}
		}

		chargesThisCycle := monthlyCharges.Sub(depositApplied)
		finalBalance := previousBalance.Add(chargesThisCycle).Round(2)

		cycle := models.BillingCycle{
			TenantID:        t.ID,
			CycleMonth:      month,
			PreviousBalance: previousBalance,
			DepositApplied:  depositApplied,
			MonthlyCharges:  monthlyCharges,
			PaymentsMade:    decimal.Zero,
			FinalBalance:    finalBalance,
		}
		if err := tx.Create(&cycle).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// A concurrent accrual won the race this month.
				return nil
			}
			return fmt.Errorf("create billing cycle: %w", err)
		}

		updates := map[string]interface{}{
			"outstanding_balance": finalBalance,
			"next_due_date":       s.nextDueDate(&t),
		}
		if depositApplied.IsPositive() {
			updates["deposit_paid"] = true
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return fmt.Errorf("update tenant balance: %w", err)
		}

		t.OutstandingBalance = finalBalance
		posted = &cycle
		*tenant = t
		return nil
	})
	if err != nil {
		return err
	}

	// Notifications go out after the transaction commits so a delivery
	// failure can never roll back the posting.
	if posted != nil {
		s.notifications.ChargePosted(tenant, posted)
	}
	if corrected != nil {
		s.notifications.BillingCorrected(tenant, corrected, correctionAmount)
	}
	return nil
}

// correctDepositIfMissed performs the one-time backfill: when no cycle
// has ever carried a positive depositApplied and the tenant still holds
// an unapplied deposit, the current month's cycle is adjusted in place.
// Returns the corrected cycle and amount, or (nil, 0) on no-op.
func (s *BillingService) correctDepositIfMissed(tx *gorm.DB, t *models.Tenant, cycle *models.BillingCycle) (*models.BillingCycle, decimal.Decimal, error) {
	if !t.Deposit.IsPositive() || t.DepositPaid {
		return nil, decimal.Zero, nil
	}

	applied, err := s.depositEverApplied(tx, t.ID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if applied {
		return nil, decimal.Zero, nil
	}

	amount := decimal.Min(t.Deposit, cycle.MonthlyCharges).Round(2)
	if !amount.IsPositive() {
		return nil, decimal.Zero, nil
	}

	cycle.DepositApplied = cycle.DepositApplied.Add(amount)
	cycle.FinalBalance = cycle.FinalBalance.Sub(amount)
	if err := tx.Model(cycle).Updates(map[string]interface{}{
		"deposit_applied": cycle.DepositApplied,
		"final_balance":   cycle.FinalBalance,
	}).Error; err != nil {
		return nil, decimal.Zero, fmt.Errorf("backfill billing cycle: %w", err)
	}

	newBalance := t.OutstandingBalance.Sub(amount).Round(2)
	if err := tx.Model(t).Updates(map[string]interface{}{
		"outstanding_balance": newBalance,
		"deposit_paid":        true,
	}).Error; err != nil {
		return nil, decimal.Zero, fmt.Errorf("apply deposit correction: %w", err)
	}
	t.OutstandingBalance = newBalance
	t.DepositPaid = true

	return cycle, amount, nil
}

// depositEverApplied reports whether any cycle of the tenant carries a
// positive deposit credit.
func (s *BillingService) depositEverApplied(tx *gorm.DB, tenantID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.BillingCycle{}).
		Where("tenant_id = ? AND deposit_applied > 0", tenantID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check deposit history: %w", err)
	}
	return count > 0, nil
}

// nextDueDate advances the due date by one month, anchoring to the
// lease start day when no due date has been set yet.
func (s *BillingService) nextDueDate(t *models.Tenant) time.Time {
	if t.NextDueDate != nil {
		return t.NextDueDate.AddDate(0, 1, 0)
	}

	now := s.now()
	anchor := t.LeaseStart
	if anchor.IsZero() {
		anchor = t.CheckInDate
	}
	day := anchor.Day()

	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	// Clip the anchor day to the target month's length.
	lastDay := time.Date(next.Year(), next.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, now.Location())
}
