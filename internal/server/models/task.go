package models

import (
	"fmt"
	"time"
)

// Task is a shared deadline. DueDate carries a date only.
type Task struct {
	ID        string
	Title     string
	DueDate   time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Completion is one user's completion flag for one task.
type Completion struct {
	ID        string
	UserID    string
	TaskID    string
	Completed bool
	UpdatedAt time.Time
}

// CompletionID derives the deterministic key of a (user, task) pair, so at
// most one record exists per pair.
func CompletionID(userID, taskID string) string {
	return fmt.Sprintf("%s_%s", userID, taskID)
}
