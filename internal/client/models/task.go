package models

import (
	"fmt"
	"time"
)

// Task is a shared deadline. DueDate is a calendar date.
type Task struct {
	ID        string
	Title     string
	DueDate   time.Time
	CreatedBy string
	CreatedAt time.Time
}

// Completion is the signed-in user's flag for one task.
type Completion struct {
	ID        string
	UserID    string
	TaskID    string
	Completed bool
	UpdatedAt time.Time
}

// CompletionID is the deterministic key of a (user, task) pair.
func CompletionID(userID, taskID string) string {
	return fmt.Sprintf("%s_%s", userID, taskID)
}
