package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestAccrueTenant_FirstCycleAppliesDeposit(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	billing := NewBillingService(db, NewNotificationService(db))

	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var cycle models.BillingCycle
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).First(&cycle).Error)

	assert.Equal(t, CycleMonth(time.Now()), cycle.CycleMonth)
	requireDecimalEqual(t, 0, cycle.PreviousBalance)
	requireDecimalEqual(t, 11000, cycle.MonthlyCharges)
	requireDecimalEqual(t, 5000, cycle.DepositApplied)
	requireDecimalEqual(t, 0, cycle.PaymentsMade)
	requireDecimalEqual(t, 6000, cycle.FinalBalance)

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 6000, refreshed.OutstandingBalance)
	assert.True(t, refreshed.DepositPaid)
	require.NotNil(t, refreshed.NextDueDate)
}

func TestAccrueTenant_IdempotentWithinMonth(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	billing := NewBillingService(db, NewNotificationService(db))

	require.NoError(t, billing.AccrueTenant(tenant.ID))
	require.NoError(t, billing.AccrueTenant(tenant.ID))
	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var count int64
	require.NoError(t, db.Model(&models.BillingCycle{}).
		Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 6000, refreshed.OutstandingBalance)
}

func TestAccrueTenant_DepositAppliedOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	billing := NewBillingService(db, NewNotificationService(db))

	// First month.
	require.NoError(t, billing.AccrueTenant(tenant.ID))

	// Second month.
	billing.now = func() time.Time { return time.Now().AddDate(0, 1, 0) }
	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var cycles []models.BillingCycle
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).
		Order("cycle_month ASC").Find(&cycles).Error)
	require.Len(t, cycles, 2)

	requireDecimalEqual(t, 5000, cycles[0].DepositApplied)
	requireDecimalEqual(t, 0, cycles[1].DepositApplied)
	requireDecimalEqual(t, 6000, cycles[1].PreviousBalance)
	requireDecimalEqual(t, 17000, cycles[1].FinalBalance)

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 17000, refreshed.OutstandingBalance)
}

func TestAccrueTenant_DepositCappedAtMonthlyCharges(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("deposit", decimal.NewFromInt(20000)).Error)
	billing := NewBillingService(db, NewNotificationService(db))

	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var cycle models.BillingCycle
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).First(&cycle).Error)
	requireDecimalEqual(t, 11000, cycle.DepositApplied)
	requireDecimalEqual(t, 0, cycle.FinalBalance)
}

func TestAccrueTenant_CorrectionBackfillsMissedDeposit(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	billing := NewBillingService(db, NewNotificationService(db))

	// A cycle posted without the deposit credit, as if by an older
	// version of the accrual.
	month := CycleMonth(time.Now())
	cycle := models.BillingCycle{
		TenantID:        tenant.ID,
		CycleMonth:      month,
		PreviousBalance: decimal.Zero,
		DepositApplied:  decimal.Zero,
		MonthlyCharges:  decimal.NewFromInt(11000),
		PaymentsMade:    decimal.Zero,
		FinalBalance:    decimal.NewFromInt(11000),
	}
	require.NoError(t, db.Create(&cycle).Error)
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("outstanding_balance", decimal.NewFromInt(11000)).Error)

	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var corrected models.BillingCycle
	require.NoError(t, db.First(&corrected, cycle.ID).Error)
	requireDecimalEqual(t, 5000, corrected.DepositApplied)
	requireDecimalEqual(t, 6000, corrected.FinalBalance)

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 6000, refreshed.OutstandingBalance)
	assert.True(t, refreshed.DepositPaid)

	// A further accrual in the same month must not correct twice.
	require.NoError(t, billing.AccrueTenant(tenant.ID))
	require.NoError(t, db.First(&corrected, cycle.ID).Error)
	requireDecimalEqual(t, 5000, corrected.DepositApplied)
}

func TestAccrueTenant_InactiveTenantIsNoop(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("status", models.TenantStatusCheckedOut).Error)
	billing := NewBillingService(db, NewNotificationService(db))

	require.NoError(t, billing.AccrueTenant(tenant.ID))

	var count int64
	require.NoError(t, db.Model(&models.BillingCycle{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccrueTenant_NotFound(t *testing.T) {
	db := newTestDB(t)
	billing := NewBillingService(db, NewNotificationService(db))

	err := billing.AccrueTenant(9999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAccrueAllActive_IsolatesTenants(t *testing.T) {
	db := newTestDB(t)
	first := seedActiveTenant(t, db, "maria@example.com", "201")
	second := seedActiveTenant(t, db, "juan@example.com", "202")
	billing := NewBillingService(db, NewNotificationService(db))

	ok, err := billing.AccrueAllActive()
	require.NoError(t, err)
	assert.Equal(t, 2, ok)

	var count int64
	require.NoError(t, db.Model(&models.BillingCycle{}).
		Where("tenant_id IN ?", []uint{first.ID, second.ID}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestNextDueDate_AdvancesByMonth(t *testing.T) {
	db := newTestDB(t)
	billing := NewBillingService(db, NewNotificationService(db))

	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tenant := &models.Tenant{NextDueDate: &due}

	next := billing.nextDueDate(tenant)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), next)
}

func TestNextDueDate_ClipsAnchorDay(t *testing.T) {
	db := newTestDB(t)
	billing := NewBillingService(db, NewNotificationService(db))
	billing.now = func() time.Time {
		return time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	}

	tenant := &models.Tenant{
		LeaseStart: time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC),
	}

	// February 2026 has 28 days; the 31st anchor clips to the 28th.
	next := billing.nextDueDate(tenant)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), next)
}
