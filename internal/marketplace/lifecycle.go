package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

// TaskService owns the task lifecycle state machine and the side effects
// each transition triggers.
type TaskService struct {
	store  store.Store
	events Publisher
	log    *zap.Logger
}

func NewTaskService(st store.Store, events Publisher, log *zap.Logger) *TaskService {
	return &TaskService{store: st, events: events, log: log}
}

// CreateTaskInput is the client's posting request.
type CreateTaskInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Price         float64    `json:"price"`
	Location      string     `json:"location"`
	ScheduleDate  *time.Time `json:"schedule_date"`
	ServiceFee    float64    `json:"service_fee"`
	PaymentMethod string     `json:"payment_method"`
}

// CreateTask validates and posts a new task for the client.
func (s *TaskService) CreateTask(ctx context.Context, clientID string, in CreateTaskInput) (*domain.Task, error) {
	if in.Title == "" {
		return nil, domain.Validation("title is required")
	}
	if in.Price <= 0 {
		return nil, domain.Validation("price must be positive")
	}
	if in.ServiceFee < 0 {
		return nil, domain.Validation("service fee cannot be negative")
	}
	fee := in.ServiceFee
	if fee == 0 {
		fee = DefaultServiceFee
	}

	now := time.Now()
	task := &domain.Task{
		ID:            uuid.New().String(),
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Price:         in.Price,
		Location:      in.Location,
		ScheduleDate:  in.ScheduleDate,
		ClientID:      clientID,
		Status:        domain.TaskPosted,
		ServiceFee:    fee,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.log.Info("task posted", zap.String("task_id", task.ID), zap.Float64("price", task.Price))
	s.publish(ctx, domain.Event{
		Name: domain.EventTaskPosted, TaskID: task.ID, ClientID: clientID,
		Amount: task.Price, OccurredAt: now,
	})
	return task, nil
}

// GetTask returns a task by id.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.store.GetTask(ctx, id)
}

// ListClientTasks returns every task posted by the client.
func (s *TaskService) ListClientTasks(ctx context.Context, clientID string) ([]domain.Task, error) {
	return s.store.ListTasksByClient(ctx, clientID)
}

// MarkInProgress moves an assigned task to in_progress. Only the assigned
// tasker may start the work.
func (s *TaskService) MarkInProgress(ctx context.Context, taskID, actorID string) (*domain.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.TaskerID != actorID {
		return nil, domain.NotAuthorized("task", taskID, "only the assigned tasker may start the task")
	}
	if !domain.CanTransition(task.Status, domain.TaskInProgress) {
		return nil, domain.InvalidTransition(taskID, task.Status, domain.TaskInProgress)
	}
	if err := s.store.UpdateTaskStatus(ctx, taskID, task.Status, domain.TaskInProgress); err != nil {
		return nil, err
	}
	return s.store.GetTask(ctx, taskID)
}

// CompleteWithReview finishes an in_progress task: it computes the payout
// split, appends the commission, service-fee and payout ledger entries,
// creates the released payment, folds the rating into the tasker's
// aggregate and moves the task to completed, all in one atomic unit. A
// review may be submitted at most once per task; a retried call finds the
// existing review and reports success without re-running the effects.
func (s *TaskService) CompleteWithReview(ctx context.Context, taskID string, rating int, comment, actorID string) error {
	if rating < 1 || rating > 5 {
		return domain.Validation("rating must be between 1 and 5")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.ClientID != actorID {
		return domain.NotAuthorized("task", taskID, "only the task's client may complete it")
	}
	if task.Status == domain.TaskCompleted {
		// Retried request: the review is the idempotency record.
		if _, err := s.store.GetReviewByTask(ctx, taskID); err == nil {
			return nil
		}
		return domain.InvalidState("task", taskID, string(task.Status), string(domain.TaskInProgress))
	}
	if !domain.CanTransition(task.Status, domain.TaskCompleted) {
		return domain.InvalidTransition(taskID, task.Status, domain.TaskCompleted)
	}
	if task.TaskerID == "" {
		return domain.InvalidState("task", taskID, string(task.Status), "assigned tasker required")
	}

	split := CalculatePayout(task.Price, task.ServiceFee)
	now := time.Now()

	completion := store.Completion{
		TaskID: taskID,
		Review: domain.Review{
			ID:        uuid.New().String(),
			TaskID:    taskID,
			TaskerID:  task.TaskerID,
			ClientID:  task.ClientID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: now,
		},
		Entries: []domain.LedgerEntry{
			{ID: uuid.New().String(), Type: domain.EntryCommission, Amount: split.Commission, SourceTaskID: taskID, CreatedAt: now},
			{ID: uuid.New().String(), Type: domain.EntryServiceFee, Amount: split.ServiceFee, SourceTaskID: taskID, CreatedAt: now},
			// Payout leaves the platform, recorded negative.
			{ID: uuid.New().String(), Type: domain.EntryPayout, Amount: -split.Payout, SourceTaskID: taskID, CreatedAt: now},
		},
		Payment: domain.Payment{
			ID:         uuid.New().String(),
			TaskID:     taskID,
			ClientID:   task.ClientID,
			TaskerID:   task.TaskerID,
			Amount:     split.TotalPaid,
			Status:     domain.PaymentReleased,
			Method:     task.PaymentMethod,
			CreatedAt:  now,
			ReleasedAt: &now,
		},
		Rating:      rating,
		CompletedAt: now,
	}

	alreadyDone, err := s.store.CompleteTask(ctx, completion)
	if err != nil {
		return err
	}
	if alreadyDone {
		s.log.Info("completion retried, already recorded", zap.String("task_id", taskID))
		return nil
	}

	s.log.Info("task completed",
		zap.String("task_id", taskID),
		zap.String("tasker_id", task.TaskerID),
		zap.Float64("payout", split.Payout),
		zap.Float64("commission", split.Commission))
	s.publish(ctx, domain.Event{
		Name: domain.EventTaskCompleted, TaskID: taskID, ClientID: task.ClientID,
		TaskerID: task.TaskerID, Amount: split.TotalPaid, OccurredAt: now,
	})
	return nil
}

// CancelTask cancels a posted, assigned or in_progress task and cascades
// cancellation to every open offer on it.
func (s *TaskService) CancelTask(ctx context.Context, taskID, actorID string) (*domain.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.ClientID != actorID {
		return nil, domain.NotAuthorized("task", taskID, "only the task's client may cancel it")
	}
	if !domain.CanTransition(task.Status, domain.TaskCancelled) {
		return nil, domain.InvalidTransition(taskID, task.Status, domain.TaskCancelled)
	}

	cancelled, err := s.store.CancelTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.log.Info("task cancelled", zap.String("task_id", taskID), zap.Int("offers_cancelled", cancelled))
	s.publish(ctx, domain.Event{
		Name: domain.EventTaskCancelled, TaskID: taskID, ClientID: task.ClientID,
		TaskerID: task.TaskerID, OccurredAt: time.Now(),
	})
	return s.store.GetTask(ctx, taskID)
}

func (s *TaskService) publish(ctx context.Context, ev domain.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", zap.String("event", ev.Name), zap.Error(err))
	}
}
