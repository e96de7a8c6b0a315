package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// MonthlyBillingTaskDef accrues the current billing cycle for every
// active tenant. It is idempotent, so an extra run within the same
// month is harmless.
type MonthlyBillingTaskDef struct{}

// TaskID returns the unique identifier for this task.
func (t *MonthlyBillingTaskDef) TaskID() string {
	return "monthly_billing_accrual"
}

// CreateRecurringTask builds the standing first-of-month accrual task.
func (t *MonthlyBillingTaskDef) CreateRecurringTask(firstDue time.Time) (*models.ScheduledTask, error) {
	rule := "FREQ=MONTHLY;BYMONTHDAY=1"
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, firstDue, &rule, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution runs the accrual sweep.
func (t *MonthlyBillingTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	billing := services.NewBillingService(db, services.NewNotificationService(db))

	accrued, err := billing.AccrueAllActive()
	if err != nil {
		return map[string]interface{}{"accrued": accrued}, err
	}

	logger.Get().Info("monthly billing sweep completed",
		zap.Int("accrued", accrued),
		zap.String("cycle_month", services.CycleMonth(time.Now())),
	)
	return map[string]interface{}{
		"status":      "success",
		"accrued":     accrued,
		"cycle_month": services.CycleMonth(time.Now()),
	}, nil
}

// MonthlyBillingTask is the singleton instance of MonthlyBillingTaskDef.
var MonthlyBillingTask = &MonthlyBillingTaskDef{}

// SingleTenantAccrualTaskDef accrues one tenant's current cycle, used
// when a tenant is activated mid-month.
type SingleTenantAccrualTaskDef struct{}

// TaskID returns the unique identifier for this task.
func (t *SingleTenantAccrualTaskDef) TaskID() string {
	return "tenant_billing_accrual"
}

// CreateTask builds a one-time accrual task for a tenant.
func (t *SingleTenantAccrualTaskDef) CreateTask(tenantID uint, due time.Time) (*models.ScheduledTask, error) {
	args := map[string]interface{}{"tenant_id": tenantID}
	return BuildScheduledTask(t.TaskID(), args, due, nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution accrues the tenant named in the arguments.
func (t *SingleTenantAccrualTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	tenantID, err := uintArg(task.Arguments, "tenant_id")
	if err != nil {
		return nil, err
	}

	billing := services.NewBillingService(db, services.NewNotificationService(db))
	if err := billing.AccrueTenant(tenantID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "tenant_id": tenantID}, nil
}

// SingleTenantAccrualTask is the singleton instance of SingleTenantAccrualTaskDef.
var SingleTenantAccrualTask = &SingleTenantAccrualTaskDef{}
