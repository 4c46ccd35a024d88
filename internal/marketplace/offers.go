package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

// maxOfferMultiple caps a bid at twice the posted budget.
const maxOfferMultiple = 2.0

// OfferService enforces single-assignment semantics across competing
// offers for a task.
type OfferService struct {
	store  store.Store
	events Publisher
	log    *zap.Logger
}

func NewOfferService(st store.Store, events Publisher, log *zap.Logger) *OfferService {
	return &OfferService{store: st, events: events, log: log}
}

// AddOfferInput is a tasker's bid against an open task.
type AddOfferInput struct {
	TaskID  string  `json:"task_id"`
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

// AddOffer creates a pending offer for a posted task.
func (s *OfferService) AddOffer(ctx context.Context, taskerID string, in AddOfferInput) (*domain.Offer, error) {
	if in.Amount <= 0 {
		return nil, domain.Validation("offer amount must be positive")
	}
	task, err := s.store.GetTask(ctx, in.TaskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskPosted {
		return nil, domain.InvalidState("task", task.ID, string(task.Status), string(domain.TaskPosted))
	}
	if task.ClientID == taskerID {
		return nil, domain.Validation("cannot bid on your own task")
	}
	if in.Amount > task.Price*maxOfferMultiple {
		return nil, domain.Validation(fmt.Sprintf("offer amount %.2f exceeds twice the task budget %.2f", in.Amount, task.Price))
	}

	offer := &domain.Offer{
		ID:          uuid.New().String(),
		TaskID:      task.ID,
		TaskerID:    taskerID,
		ClientID:    task.ClientID,
		Amount:      in.Amount,
		Message:     in.Message,
		Status:      domain.OfferPending,
		DateCreated: time.Now(),
	}
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	s.log.Info("offer added", zap.String("offer_id", offer.ID), zap.String("task_id", task.ID))
	return offer, nil
}

// AcceptOffer accepts one offer and rejects every other pending offer on
// the task, assigning the task to the offer's tasker, as one atomic unit.
// Only the posting client may accept, and only while the task is still
// posted: when two accepts race, the second to observe the posted state
// fails instead of double-assigning. A conflict is retried once (expected
// under normal multi-bid contention) before surfacing.
func (s *OfferService) AcceptOffer(ctx context.Context, offerID, taskID, actorID string) (string, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return "", err
	}
	if offer.TaskID != taskID {
		return "", domain.NotFound("offer", offerID)
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task.ClientID != actorID {
		return "", domain.NotAuthorized("task", taskID, "only the posting client may accept an offer")
	}
	if offer.Status != domain.OfferPending {
		return "", domain.InvalidState("offer", offerID, string(offer.Status), string(domain.OfferPending))
	}
	if task.Status != domain.TaskPosted {
		return "", domain.InvalidState("task", taskID, string(task.Status), string(domain.TaskPosted))
	}

	taskerID, err := s.store.AssignTask(ctx, taskID, offerID)
	if domain.IsKind(err, domain.KindConflict) {
		taskerID, err = s.retryAccept(ctx, taskID, offerID)
	}
	if err != nil {
		return "", err
	}

	s.log.Info("offer accepted",
		zap.String("offer_id", offerID), zap.String("task_id", taskID), zap.String("tasker_id", taskerID))
	s.publish(ctx, domain.Event{
		Name: domain.EventTaskAssigned, TaskID: taskID, ClientID: actorID,
		TaskerID: taskerID, Amount: offer.Amount, OccurredAt: time.Now(),
	})
	return taskerID, nil
}

// retryAccept re-checks current state before the single automatic retry.
// When another accept already won, the caller gets invalid_state naming
// the winner's effect rather than a bare conflict.
func (s *OfferService) retryAccept(ctx context.Context, taskID, offerID string) (string, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return "", err
	}
	if task.Status != domain.TaskPosted {
		return "", domain.InvalidState("task", taskID, string(task.Status), string(domain.TaskPosted))
	}
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return "", err
	}
	if offer.Status != domain.OfferPending {
		return "", domain.InvalidState("offer", offerID, string(offer.Status), string(domain.OfferPending))
	}
	return s.store.AssignTask(ctx, taskID, offerID)
}

// RejectOffer lets the task's client turn down a pending offer.
func (s *OfferService) RejectOffer(ctx context.Context, offerID, actorID string) error {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.ClientID != actorID {
		return domain.NotAuthorized("offer", offerID, "only the task's client may reject an offer")
	}
	if offer.Status != domain.OfferPending {
		return domain.InvalidState("offer", offerID, string(offer.Status), string(domain.OfferPending))
	}
	return s.store.UpdateOfferStatus(ctx, offerID, domain.OfferPending, domain.OfferRejected)
}

// WithdrawOffer lets the bidding tasker pull a pending offer.
func (s *OfferService) WithdrawOffer(ctx context.Context, offerID, actorID string) error {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.TaskerID != actorID {
		return domain.NotAuthorized("offer", offerID, "only the bidding tasker may withdraw an offer")
	}
	if offer.Status != domain.OfferPending {
		return domain.InvalidState("offer", offerID, string(offer.Status), string(domain.OfferPending))
	}
	return s.store.UpdateOfferStatus(ctx, offerID, domain.OfferPending, domain.OfferWithdrawn)
}

// CancelOffersForTask cancels every pending or accepted offer on the task.
// Idempotent: a second call finds nothing left to cancel.
func (s *OfferService) CancelOffersForTask(ctx context.Context, taskID, actorID string) (int, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if task.ClientID != actorID {
		return 0, domain.NotAuthorized("task", taskID, "only the task's client may cancel its offers")
	}
	return s.store.CancelTask(ctx, taskID)
}

// ListOffers returns every offer on a task, visible to its client and to
// any tasker who bid.
func (s *OfferService) ListOffers(ctx context.Context, taskID string) ([]domain.Offer, error) {
	if _, err := s.store.GetTask(ctx, taskID); err != nil {
		return nil, err
	}
	return s.store.ListOffersByTask(ctx, taskID)
}

func (s *OfferService) publish(ctx context.Context, ev domain.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("event publish failed", zap.String("event", ev.Name), zap.Error(err))
	}
}
