package domain

import "time"

// Event names observable by downstream systems (chat-room opening, push
// notifications, user stats). The core publishes; it never calls those
// systems directly.
const (
	EventTaskPosted    = "task.posted"
	EventTaskAssigned  = "task.assigned"
	EventTaskCompleted = "task.completed"
	EventTaskCancelled = "task.cancelled"
)

// Event is the payload published on marketplace state changes.
type Event struct {
	Name       string    `json:"name"`
	TaskID     string    `json:"task_id"`
	ClientID   string    `json:"client_id"`
	TaskerID   string    `json:"tasker_id,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
