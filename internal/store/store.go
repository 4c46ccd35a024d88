package store

import (
	"context"
	"time"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

// Completion is the write set applied when a task is completed: the review
// (idempotency record), the ledger entries, the payment, the rating to fold
// into the tasker's aggregate, and the completion timestamp.
type Completion struct {
	TaskID      string
	Review      domain.Review
	Entries     []domain.LedgerEntry
	Payment     domain.Payment
	Rating      int
	CompletedAt time.Time
}

// Store is the persistence handle injected into every service. Reads are
// plain lookups; the multi-entity operations (AssignTask, CompleteTask,
// CancelTask, ApplyRating) are atomic units: either every write in the
// unit lands or none do, and each re-checks its state guards so a caller
// racing another writer gets a conflict instead of a partial application.
type Store interface {
	// Tasks.
	CreateTask(ctx context.Context, t *domain.Task) error
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasksByClient(ctx context.Context, clientID string) ([]domain.Task, error)
	// UpdateTaskStatus moves a task from one status to another. It fails
	// with a conflict when the task is no longer in the expected status.
	UpdateTaskStatus(ctx context.Context, id string, from, to domain.TaskStatus) error

	// Offers.
	CreateOffer(ctx context.Context, o *domain.Offer) error
	GetOffer(ctx context.Context, id string) (*domain.Offer, error)
	ListOffersByTask(ctx context.Context, taskID string) ([]domain.Offer, error)
	// UpdateOfferStatus is guarded the same way as UpdateTaskStatus.
	UpdateOfferStatus(ctx context.Context, id string, from, to domain.OfferStatus) error

	// AssignTask atomically accepts one offer, rejects every other pending
	// offer on the task, and assigns the task to the offer's tasker. The
	// guards (task posted, offer pending) are re-checked inside the unit;
	// a miss returns a conflict and nothing is written.
	AssignTask(ctx context.Context, taskID, offerID string) (taskerID string, err error)

	// CompleteTask applies the full completion write set in one unit. When
	// a review already exists for the task it writes nothing and reports
	// alreadyDone.
	CompleteTask(ctx context.Context, c Completion) (alreadyDone bool, err error)

	// CancelTask moves the task to cancelled and every pending or accepted
	// offer on it to cancelled. Idempotent: cancelling a cancelled task is
	// a no-op reporting zero newly cancelled offers.
	CancelTask(ctx context.Context, taskID string) (cancelledOffers int, err error)

	// Reviews and payments.
	GetReviewByTask(ctx context.Context, taskID string) (*domain.Review, error)
	GetPaymentByTask(ctx context.Context, taskID string) (*domain.Payment, error)

	// Rating aggregate: single atomic read-modify-write per tasker.
	ApplyRating(ctx context.Context, taskerID string, rating int) (domain.TaskerRating, error)
	GetRating(ctx context.Context, taskerID string) (domain.TaskerRating, error)

	// Ledger: append-only.
	AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error
	ListEntriesInRange(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error)

	// Earnings summaries.
	UpsertSummary(ctx context.Context, s *domain.EarningsSummary) error
	GetSummary(ctx context.Context, id string) (*domain.EarningsSummary, error)
	// ListDailySummaries returns daily rows whose period key starts with
	// the given month key (YYYY-MM), ordered by period.
	ListDailySummaries(ctx context.Context, monthKey string) ([]domain.EarningsSummary, error)
}
