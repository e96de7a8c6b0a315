package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bcflats_backend/internal/config"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
	"bcflats_backend/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Server.Env); err != nil {
		panic(err)
	}
	log := logger.Get()
	defer log.Sync()

	db, err := services.InitDB(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	tasks.SetEmailService(services.NewEmailService(cfg.SMTP))
	tasks.DefineTasks()

	if err := seedRecurringTasks(db); err != nil {
		log.Error("failed to seed recurring tasks", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("shutting down worker")
		cancel()
	}()

	log.Info("worker started", zap.Duration("poll_interval", cfg.Worker.PollInterval))

	ticker := time.NewTicker(cfg.Worker.PollInterval)
	defer ticker.Stop()

	processScheduledTasks(ctx, db)
	for {
		select {
		case <-ticker.C:
			processScheduledTasks(ctx, db)
		case <-ctx.Done():
			return
		}
	}
}

// seedRecurringTasks installs the standing tasks if they are missing:
// the first-of-month billing accrual, the weekly overdue reminder and
// the daily announcement expiry sweep.
func seedRecurringTasks(db *gorm.DB) error {
	now := time.Now()
	firstOfNextMonth := time.Date(now.Year(), now.Month(), 1, 6, 0, 0, 0, now.Location()).AddDate(0, 1, 0)

	seeds := []struct {
		name  string
		build func() (*models.ScheduledTask, error)
	}{
		{tasks.MonthlyBillingTask.TaskID(), func() (*models.ScheduledTask, error) {
			return tasks.MonthlyBillingTask.CreateRecurringTask(firstOfNextMonth)
		}},
		{tasks.OverdueReminderTask.TaskID(), func() (*models.ScheduledTask, error) {
			return tasks.OverdueReminderTask.CreateRecurringTask(now.Add(time.Hour))
		}},
		{tasks.ExpireAnnouncementsTask.TaskID(), func() (*models.ScheduledTask, error) {
			return tasks.ExpireAnnouncementsTask.CreateRecurringTask(now.Add(time.Hour))
		}},
	}

	for _, seed := range seeds {
		var existing models.ScheduledTask
		err := db.Where("task_name = ? AND status = ?", seed.name, models.ScheduledTaskStatusActive).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		task, err := seed.build()
		if err != nil {
			return err
		}
		if err := db.Create(task).Error; err != nil {
			return err
		}
		logger.Get().Info("seeded recurring task", zap.String("task", seed.name))
	}
	return nil
}

func processScheduledTasks(ctx context.Context, db *gorm.DB) {
	log := logger.Get()

	var pendingTasks []models.ScheduledTask
	now := time.Now()
	if err := db.Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, now).
		Find(&pendingTasks).Error; err != nil {
		log.Error("failed to fetch pending tasks", zap.Error(err))
		return
	}
	if len(pendingTasks) == 0 {
		return
	}

	log.Info("processing pending tasks", zap.Int("count", len(pendingTasks)))
	for _, task := range pendingTasks {
		if ctx.Err() != nil {
			return
		}
		executeTask(ctx, db, task)
	}
}

func executeTask(ctx context.Context, db *gorm.DB, task models.ScheduledTask) {
	log := logger.Get()
	log.Info("executing task", zap.String("task", task.TaskName), zap.Uint("id", task.ID))

	handler, found := tasks.GetHandler(task.TaskName)
	if !found {
		now := time.Now()
		db.Model(&task).Updates(map[string]interface{}{
			"status":   models.ScheduledTaskStatusFailure,
			"last_run": &now,
		})
		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           now,
			Status:          "handler_not_found",
			AttemptNumber:   1,
			Arguments:       task.Arguments,
			Result:          map[string]interface{}{"error": "handler not found"},
		})
		log.Error("no handler registered for task", zap.String("task", task.TaskName))
		return
	}

	maxAttempts := task.MaxAttempt
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var result map[string]interface{}
	var err error
	var startTime time.Time
	attempt := 0
	for attempt < maxAttempts {
		attempt++
		startTime = time.Now()
		result, err = handler(ctx, db, task)
		runtimeMs := int(time.Since(startTime).Milliseconds())

		status := "success"
		resultData := result
		if err != nil {
			status = "failure"
			resultData = map[string]interface{}{"error": err.Error()}
			log.Warn("task attempt failed",
				zap.String("task", task.TaskName),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		db.Create(&models.ScheduledTaskHistory{
			ScheduledTaskID: task.ID,
			TaskName:        task.TaskName,
			RunAt:           startTime,
			RuntimeMs:       runtimeMs,
			Status:          status,
			AttemptNumber:   attempt,
			Arguments:       task.Arguments,
			Result:          resultData,
		})

		if err == nil || ctx.Err() != nil {
			break
		}
	}

	taskUpdates := map[string]interface{}{
		"last_run": &startTime,
	}
	if err != nil {
		taskUpdates["status"] = models.ScheduledTaskStatusFailure
	} else {
		switch task.TaskType {
		case models.ScheduledTaskTypeOneTime:
			taskUpdates["status"] = models.ScheduledTaskStatusDone
		case models.ScheduledTaskTypeRecurring:
			nextDue := task.NextDue()
			if nextDue.After(task.Due) {
				taskUpdates["status"] = models.ScheduledTaskStatusActive
				taskUpdates["due"] = nextDue
			} else {
				taskUpdates["status"] = models.ScheduledTaskStatusDone
			}
		}
		log.Info("task completed", zap.String("task", task.TaskName))
	}
	db.Model(&task).Updates(taskUpdates)
}
