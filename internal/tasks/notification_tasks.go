package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// emailer is the outbound mail transport, injected by the worker at
// startup. Left nil, email tasks report every recipient as skipped.
var emailer *services.EmailService

// SetEmailService injects the mail transport used by email tasks.
func SetEmailService(svc *services.EmailService) {
	emailer = svc
}

// EmailRecipient is one addressee in an email batch.
type EmailRecipient struct {
	AccountID uint   `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// SendEmailBatchArgs defines the arguments for an email batch task.
type SendEmailBatchArgs struct {
	Recipients   []EmailRecipient `json:"recipients"`
	Subject      string           `json:"subject"`
	Template     string           `json:"template"`
	AttemptCount int              `json:"attempt_count"`
}

// SendEmailBatchTaskDef delivers an email to each recipient. Failed
// recipients are collected into a retry task until the attempt budget
// runs out, so one bad mailbox never blocks the rest of the batch.
type SendEmailBatchTaskDef struct{}

// TaskID returns the unique identifier for this task.
func (t *SendEmailBatchTaskDef) TaskID() string {
	return "send_email_batch"
}

// CreateTask builds a one-time email batch task.
func (t *SendEmailBatchTaskDef) CreateTask(args SendEmailBatchArgs) (*models.ScheduledTask, error) {
	return BuildScheduledTask(t.TaskID(), args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution delivers the batch and reschedules failures.
func (t *SendEmailBatchTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var args SendEmailBatchArgs
	if err := decodeArgs(task.Arguments, &args); err != nil {
		return nil, err
	}
	if args.Template == "" {
		return nil, fmt.Errorf("template is missing")
	}

	log := logger.Get()
	total := len(args.Recipients)
	successCount := 0
	skippedCount := 0
	var failures []string
	var failedRecipients []EmailRecipient

	for _, recipient := range args.Recipients {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if recipient.Email == "" {
			skippedCount++
			continue
		}
		if emailer == nil {
			log.Warn("email transport not configured, skipping recipient",
				zap.String("email", recipient.Email))
			skippedCount++
			continue
		}

		body := renderTemplate(args.Template, recipient)
		if err := emailer.SendEmail([]string{recipient.Email}, args.Subject, body); err != nil {
			log.Warn("email delivery failed",
				zap.String("email", recipient.Email),
				zap.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", recipient.Email, err))
			failedRecipients = append(failedRecipients, recipient)
		} else {
			successCount++
		}
	}

	result := map[string]interface{}{
		"total":   total,
		"success": successCount,
		"skipped": skippedCount,
		"failure": len(failedRecipients),
	}

	if len(failedRecipients) > 0 {
		result["errors"] = failures

		if args.AttemptCount+1 < task.MaxAttempt {
			retryArgs := args
			retryArgs.Recipients = failedRecipients
			retryArgs.AttemptCount = args.AttemptCount + 1

			retryTask, err := BuildScheduledTask(t.TaskID(), retryArgs,
				time.Now().Add(5*time.Minute), nil, models.ScheduledTaskTypeOneTime, task.MaxAttempt)
			if err != nil {
				log.Error("failed to build retry task", zap.Error(err))
			} else if err := db.Create(retryTask).Error; err != nil {
				log.Error("failed to schedule retry task", zap.Error(err))
			} else {
				log.Info("rescheduled failed recipients",
					zap.Int("failed", len(failedRecipients)),
					zap.Int("attempt", retryArgs.AttemptCount))
			}
		} else {
			return result, fmt.Errorf("attempt budget exhausted, %d recipients undelivered", len(failedRecipients))
		}
	}

	return result, nil
}

// SendEmailBatchTask is the singleton instance of SendEmailBatchTaskDef.
var SendEmailBatchTask = &SendEmailBatchTaskDef{}

func renderTemplate(template string, recipient EmailRecipient) string {
	body := strings.ReplaceAll(template, "$name", recipient.Name)
	body = strings.ReplaceAll(body, "$email", recipient.Email)
	return body
}

// OverdueReminderTaskDef emails every active tenant carrying a positive
// balance past their due date.
type OverdueReminderTaskDef struct{}

// TaskID returns the unique identifier for this task.
func (t *OverdueReminderTaskDef) TaskID() string {
	return "overdue_balance_reminder"
}

// CreateRecurringTask builds the standing weekly reminder task.
func (t *OverdueReminderTaskDef) CreateRecurringTask(firstDue time.Time) (*models.ScheduledTask, error) {
	rule := "FREQ=WEEKLY;BYDAY=MO"
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, firstDue, &rule, models.ScheduledTaskTypeRecurring, 3)
}

// HandleExecution finds overdue tenants and queues an email batch.
func (t *OverdueReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	var tenants []models.Tenant
	err := db.Preload("Account").
		Where("status = ? AND outstanding_balance > 0 AND next_due_date IS NOT NULL AND next_due_date < ?",
			models.TenantStatusActive, time.Now()).
		Find(&tenants).Error
	if err != nil {
		return nil, fmt.Errorf("load overdue tenants: %w", err)
	}

	if len(tenants) == 0 {
		return map[string]interface{}{"status": "skipped", "message": "no overdue tenants"}, nil
	}

	recipients := make([]EmailRecipient, 0, len(tenants))
	notifications := services.NewNotificationService(db)
	for i := range tenants {
		tenant := &tenants[i]
		recipients = append(recipients, EmailRecipient{
			AccountID: tenant.AccountID,
			Name:      tenant.Account.FullName(),
			Email:     tenant.Account.Email,
		})
		_ = notifications.Notify(tenant.AccountID, models.RoleTenant,
			models.NotificationTypeBilling, "Payment overdue",
			fmt.Sprintf("Your balance of %s is past due. Please settle it at the earliest.", tenant.OutstandingBalance.StringFixed(2)),
			map[string]interface{}{"tenant_id": tenant.ID})
	}

	batch, err := SendEmailBatchTask.CreateTask(SendEmailBatchArgs{
		Recipients: recipients,
		Subject:    "Payment reminder",
		Template:   "Hi $name, your rent balance is past due. Please settle it at the earliest.",
	})
	if err != nil {
		return nil, err
	}
	if err := db.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("queue email batch: %w", err)
	}

	return map[string]interface{}{"status": "success", "overdue": len(tenants)}, nil
}

// OverdueReminderTask is the singleton instance of OverdueReminderTaskDef.
var OverdueReminderTask = &OverdueReminderTaskDef{}
