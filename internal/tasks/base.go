package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"bcflats_backend/internal/models"
)

// BuildScheduledTask builds a ScheduledTask record from typed args.
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("unmarshal into map: %w", err)
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        maxAttempt,
	}, nil
}

// decodeArgs round-trips the stored argument map into typed args.
func decodeArgs(arguments map[string]interface{}, dest interface{}) error {
	argsBytes, err := json.Marshal(arguments)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(argsBytes, dest); err != nil {
		return fmt.Errorf("unmarshal args: %w", err)
	}
	return nil
}

// uintArg extracts an id argument, tolerating the numeric types JSON
// deserialization produces.
func uintArg(args map[string]interface{}, key string) (uint, error) {
	switch v := args[key].(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case uint:
		return v, nil
	default:
		return 0, fmt.Errorf("%s not provided or invalid", key)
	}
}
