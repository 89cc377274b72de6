package models

import "time"

// Task asks the worker loop for one batch.
type Task struct {
	ID           string    `json:"id"`
	Count        int       `json:"count"`
	Category     string    `json:"category,omitempty"`
	EnhanceRatio float64   `json:"enhance_ratio"`
	CreatedAt    time.Time `json:"created_at"`

	// SourceRef carries the source-specific handle (e.g. a Zeebe job key)
	// needed to acknowledge the task. It is never serialized.
	SourceRef interface{} `json:"-"`
}

// TaskResult summarizes a processed task.
type TaskResult struct {
	TaskID        string  `json:"taskId"`
	Generated     int     `json:"generated"`
	Saved         int     `json:"saved"`
	Enhanced      int     `json:"enhanced"`
	ExecutionTime float64 `json:"executionTime"`
}
