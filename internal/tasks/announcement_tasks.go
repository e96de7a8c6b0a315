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

// ExpireAnnouncementsTaskDef sweeps published announcements past their
// expiry into the Expired state.
type ExpireAnnouncementsTaskDef struct{}

// TaskID returns the unique identifier for this task.
func (t *ExpireAnnouncementsTaskDef) TaskID() string {
	return "expire_announcements"
}

// CreateRecurringTask builds the standing daily expiry sweep.
func (t *ExpireAnnouncementsTaskDef) CreateRecurringTask(firstDue time.Time) (*models.ScheduledTask, error) {
	rule := "FREQ=DAILY"
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, firstDue, &rule, models.ScheduledTaskTypeRecurring, 1)
}

// HandleExecution runs the sweep.
func (t *ExpireAnnouncementsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	announcements := services.NewAnnouncementService(db, services.NewNotificationService(db))
	expired, err := announcements.ExpireDue(time.Now())
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		logger.Get().Info("expired announcements", zap.Int64("count", expired))
	}
	return map[string]interface{}{"status": "success", "expired": expired}, nil
}

// ExpireAnnouncementsTask is the singleton instance of ExpireAnnouncementsTaskDef.
var ExpireAnnouncementsTask = &ExpireAnnouncementsTaskDef{}
