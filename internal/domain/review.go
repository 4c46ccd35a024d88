package domain

import "time"

// Review is the client's rating of a completed task. Its existence is the
// idempotency record for task completion: at most one per task.
type Review struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	TaskerID  string    `json:"tasker_id"`
	ClientID  string    `json:"client_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
