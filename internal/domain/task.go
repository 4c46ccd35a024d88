package domain

import "time"

// TaskStatus is the lifecycle state of a posted task.
type TaskStatus string

const (
	TaskPosted     TaskStatus = "posted"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// ParseTaskStatus validates a raw status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskPosted, TaskAssigned, TaskInProgress, TaskCompleted, TaskCancelled:
		return TaskStatus(s), nil
	}
	return "", ErrUnknownStatus
}

// taskTransitions is the only place valid lifecycle moves are declared.
// acceptOffer drives posted->assigned; cancellation is allowed from any
// non-terminal state.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPosted:     {TaskAssigned, TaskCancelled},
	TaskAssigned:   {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskCompleted, TaskCancelled},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Task is a unit of paid work posted by a client.
// TaskerID is set only when an offer is accepted; the invariant is that
// it is non-empty iff status is assigned, in_progress or completed.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category,omitempty"`
	Price         float64    `json:"price"`
	Location      string     `json:"location,omitempty"`
	ScheduleDate  *time.Time `json:"schedule_date,omitempty"`
	ClientID      string     `json:"client_id"`
	TaskerID      string     `json:"tasker_id,omitempty"`
	Status        TaskStatus `json:"status"`
	ServiceFee    float64    `json:"service_fee"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
