package models

import "time"

// TaskStatus defines the possible statuses for a field task.
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task represents a unit of field work (sowing, spraying, harvest, repairs)
// scheduled on a farm, optionally tied to a specific plot.
type Task struct {
	ID             int64        `json:"id"`
	FarmID         int          `json:"farm_id"`
	PlotID         *int         `json:"plot_id,omitempty"`
	CreatorID      int          `json:"creator_id"`
	AssigneeID     int          `json:"assignee_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	DueDate        *time.Time   `json:"due_date,omitempty"`
	ReminderAt     *time.Time   `json:"reminder_at,omitempty"`
	LastRemindedAt *time.Time   `json:"last_reminded_at,omitempty"`
	Priority       TaskPriority `json:"priority"`
	Status         TaskStatus   `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	FarmID     *int
	AssigneeID *int
	CreatorID  *int
	Status     *TaskStatus
}
