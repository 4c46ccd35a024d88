package alerts

import "github.com/ecaro09/tasko-sub000/internal/domain"

// Asynq task type names, one per marketplace event. Downstream consumers
// (chat-room opening on assignment, push notifications, user stats)
// subscribe to these; the core only enqueues.
const (
	TypeTaskPosted    = "notify:task_posted"
	TypeTaskAssigned  = "notify:task_assigned"
	TypeTaskCompleted = "notify:task_completed"
	TypeTaskCancelled = "notify:task_cancelled"
)

// typeFor maps a domain event name to its queue task type.
func typeFor(name string) string {
	switch name {
	case domain.EventTaskPosted:
		return TypeTaskPosted
	case domain.EventTaskAssigned:
		return TypeTaskAssigned
	case domain.EventTaskCompleted:
		return TypeTaskCompleted
	case domain.EventTaskCancelled:
		return TypeTaskCancelled
	}
	return "notify:unknown"
}

const eventQueue = "events"
