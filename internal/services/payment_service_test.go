package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bcflats_backend/internal/apperr"
	"bcflats_backend/internal/models"
)

func TestRecordPayment_AdjustsBalance(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("outstanding_balance", decimal.NewFromInt(6000)).Error)

	notifications := NewNotificationService(db)
	billing := NewBillingService(db, notifications)
	payments := NewPaymentService(db, billing, notifications)

	payment, err := payments.RecordPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(4000),
		Method: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, models.PaymentMethodCash, payment.PaymentMethod)
	requireDecimalEqual(t, 6000, payment.BalanceBefore)
	requireDecimalEqual(t, 2000, payment.BalanceAfter)
	assert.True(t, payment.BalanceAfter.Equal(payment.BalanceBefore.Sub(payment.Amount)))

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 2000, refreshed.OutstandingBalance)
	require.NotNil(t, refreshed.LastPaymentDate)
}

func TestRecordPayment_OverpaymentGoesNegative(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("outstanding_balance", decimal.NewFromInt(1000)).Error)

	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	payment, err := payments.RecordPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(3000),
		Method: "GCash",
	})
	require.NoError(t, err)
	requireDecimalEqual(t, -2000, payment.BalanceAfter)
}

func TestRecordPayment_Validation(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	tests := []struct {
		name  string
		input PaymentInput
	}{
		{"zero amount", PaymentInput{Amount: decimal.Zero, Method: "Cash"}},
		{"negative amount", PaymentInput{Amount: decimal.NewFromInt(-50), Method: "Cash"}},
		{"unknown method", PaymentInput{Amount: decimal.NewFromInt(100), Method: "Barter"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := payments.RecordPayment(tenant.ID, tc.input)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPendingPayment_DoesNotTouchBalanceUntilConfirmed(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	require.NoError(t, db.Model(&models.Tenant{}).Where("id = ?", tenant.ID).
		Update("outstanding_balance", decimal.NewFromInt(6000)).Error)
	staff := seedAccount(t, db, "admin@example.com")

	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	pending, err := payments.CreatePendingPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(2500),
		Method: "paymaya",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, pending.Status)
	assert.True(t, pending.BalanceBefore.Equal(pending.BalanceAfter))

	var unchanged models.Tenant
	require.NoError(t, db.First(&unchanged, tenant.ID).Error)
	requireDecimalEqual(t, 6000, unchanged.OutstandingBalance)

	confirmed, err := payments.ConfirmPayment(pending.ID, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, confirmed.Status)
	requireDecimalEqual(t, 6000, confirmed.BalanceBefore)
	requireDecimalEqual(t, 3500, confirmed.BalanceAfter)
	require.NotNil(t, confirmed.ProcessedBy)
	assert.Equal(t, staff.ID, *confirmed.ProcessedBy)

	var refreshed models.Tenant
	require.NoError(t, db.First(&refreshed, tenant.ID).Error)
	requireDecimalEqual(t, 3500, refreshed.OutstandingBalance)
}

func TestCreatePendingPayment_RejectsStaffOnlyMethods(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	_, err := payments.CreatePendingPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(100),
		Method: "Cash",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestConfirmPayment_NonPendingIsInvalidState(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	staff := seedAccount(t, db, "admin@example.com")
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	completed, err := payments.RecordPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(100),
		Method: "Cash",
	})
	require.NoError(t, err)

	_, err = payments.ConfirmPayment(completed.ID, staff.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestProcessPayment_AccruesBeforeRecording(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	// No cycle exists yet: accrual posts 11000 charges minus the 5000
	// deposit, then the payment lands on the fresh 6000 balance.
	payment, err := payments.ProcessPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(6000),
		Method: "Bank Transfer",
	})
	require.NoError(t, err)
	requireDecimalEqual(t, 6000, payment.BalanceBefore)
	requireDecimalEqual(t, 0, payment.BalanceAfter)

	var count int64
	require.NoError(t, db.Model(&models.BillingCycle{}).
		Where("tenant_id = ?", tenant.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetPaymentStats_AggregatesCompletedOnly(t *testing.T) {
	db := newTestDB(t)
	tenant := seedActiveTenant(t, db, "maria@example.com", "201")
	notifications := NewNotificationService(db)
	payments := NewPaymentService(db, NewBillingService(db, notifications), notifications)

	_, err := payments.RecordPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(3000), Method: "Cash"})
	require.NoError(t, err)
	_, err = payments.RecordPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(2000), Method: "Cash"})
	require.NoError(t, err)
	_, err = payments.CreatePendingPayment(tenant.ID, PaymentInput{
		Amount: decimal.NewFromInt(999), Method: "GCash"})
	require.NoError(t, err)

	stats, err := payments.GetPaymentStats(&tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalPayments)
	requireDecimalEqual(t, 5000, stats.TotalAmount)
	require.Len(t, stats.MonthlyStats, 1)
	assert.Equal(t, 2, stats.MonthlyStats[0].PaymentCount)
}
