package utils

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func ParseStringToUUID(s string) uuid.UUID {
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// UnmarshalTask decodes a task's JSON payload into dest. Decode failures
// are wrapped with asynq.SkipRetry since retrying cannot fix them.
func UnmarshalTask(task *asynq.Task, dest interface{}) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("invalid %s payload: %v: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}
