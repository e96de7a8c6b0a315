package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"bcflats_backend/internal/config"
	"bcflats_backend/internal/logger"
	"bcflats_backend/internal/models"
	"bcflats_backend/internal/services"
)

// Small operational CLI to enqueue a scheduled task by hand, mostly
// for kicking off an ad-hoc billing sweep or email batch.
func main() {
	taskName := flag.String("task_name", "", "Name of the task (mandatory)")
	argsStr := flag.String("arguments", "{}", "JSON arguments for the task")
	dueStr := flag.String("due", "", "Due date (mandatory, RFC3339 or '2006-01-02 15:04' local)")
	taskType := flag.String("tasktype", "onetime", "Task type: onetime or recurring")
	recurring := flag.String("recurring", "", "RFC 5545 RRULE for recurring tasks")
	maxAttempt := flag.Int("max_attempt", 3, "Max attempts")

	flag.Parse()

	if *taskName == "" || *dueStr == "" {
		fmt.Println("Usage: schedule_task -task_name <name> -due <date> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Server.Env); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	log := logger.Get()

	db, err := services.InitDB(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(*argsStr), &args); err != nil {
		log.Fatal("invalid JSON arguments", zap.Error(err))
	}

	due, err := time.Parse(time.RFC3339, *dueStr)
	if err != nil {
		due, err = time.ParseInLocation("2006-01-02 15:04", *dueStr, time.Local)
		if err != nil {
			log.Fatal("invalid due date, use RFC3339 or '2006-01-02 15:04'", zap.Error(err))
		}
	}

	var recurringPtr *string
	if *recurring != "" {
		recurringPtr = recurring
	}

	task := models.ScheduledTask{
		TaskName:          *taskName,
		Arguments:         args,
		Due:               due,
		TaskType:          models.ScheduledTaskType(*taskType),
		RecurringInterval: recurringPtr,
		MaxAttempt:        *maxAttempt,
		Status:            models.ScheduledTaskStatusActive,
	}
	if err := db.Create(&task).Error; err != nil {
		log.Fatal("failed to create task", zap.Error(err))
	}

	fmt.Printf("created task %d (%s) due %s\n", task.ID, task.TaskName, task.Due)
}
