package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

func TestCreateTask_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.CreateTask(ctx, "client-1", CreateTaskInput{Title: "", Price: 100})
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)

	_, err = env.tasks.CreateTask(ctx, "client-1", CreateTaskInput{Title: "x", Price: 0})
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)

	// Service fee defaults when unset.
	task, err := env.tasks.CreateTask(ctx, "client-1", CreateTaskInput{Title: "x", Price: 100})
	require.NoError(t, err)
	require.Equal(t, float64(DefaultServiceFee), task.ServiceFee)
	require.Equal(t, domain.TaskPosted, task.Status)
}

// inProgressTask walks a task through post, bid, accept and start.
func inProgressTask(t *testing.T, env *testEnv, price float64) *domain.Task {
	t.Helper()
	ctx := context.Background()
	task := env.postTask(t, "client-1", price)
	offer := env.bid(t, "tasker-1", task.ID, price)
	_, err := env.offers.AcceptOffer(ctx, offer.ID, task.ID, "client-1")
	require.NoError(t, err)
	started, err := env.tasks.MarkInProgress(ctx, task.ID, "tasker-1")
	require.NoError(t, err)
	require.Equal(t, domain.TaskInProgress, started.Status)
	return started
}

func TestMarkInProgress_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := env.postTask(t, "client-1", 500)

	// A posted task has no assigned tasker yet.
	_, err := env.tasks.MarkInProgress(ctx, task.ID, "tasker-1")
	require.True(t, domain.IsKind(err, domain.KindNotAuthorized), "got %v", err)

	offer := env.bid(t, "tasker-1", task.ID, 500)
	_, err = env.offers.AcceptOffer(ctx, offer.ID, task.ID, "client-1")
	require.NoError(t, err)

	// Only the assigned tasker may start.
	_, err = env.tasks.MarkInProgress(ctx, task.ID, "client-1")
	require.True(t, domain.IsKind(err, domain.KindNotAuthorized), "got %v", err)

	_, err = env.tasks.MarkInProgress(ctx, task.ID, "tasker-1")
	require.NoError(t, err)

	// Starting twice is an invalid transition.
	_, err = env.tasks.MarkInProgress(ctx, task.ID, "tasker-1")
	require.True(t, domain.IsKind(err, domain.KindInvalidTransition), "got %v", err)
}

func TestCompleteWithReview_EffectChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := inProgressTask(t, env, 1000)

	require.NoError(t, env.tasks.CompleteWithReview(ctx, task.ID, 5, "great work", "client-1"))

	got, err := env.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TaskCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	// Three ledger entries: commission, service fee, and the negative payout.
	entries, err := env.store.ListEntriesInRange(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	byType := map[domain.EntryType]float64{}
	for _, e := range entries {
		require.Equal(t, task.ID, e.SourceTaskID)
		byType[e.Type] = e.Amount
	}
	require.Equal(t, 150.00, byType[domain.EntryCommission])
	require.Equal(t, 50.00, byType[domain.EntryServiceFee])
	require.Equal(t, -850.00, byType[domain.EntryPayout])

	// One released payment for price + service fee.
	pay, err := env.store.GetPaymentByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 1050.00, pay.Amount)
	require.Equal(t, domain.PaymentReleased, pay.Status)
	require.NotNil(t, pay.ReleasedAt)

	// One rating increment for the tasker.
	agg, err := env.ratings.GetRating(ctx, "tasker-1")
	require.NoError(t, err)
	require.Equal(t, 5.0, agg.Rating)
	require.Equal(t, 1, agg.ReviewCount)

	require.Len(t, env.pub.named(domain.EventTaskCompleted), 1)
}

func TestCompleteWithReview_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := inProgressTask(t, env, 1000)

	require.NoError(t, env.tasks.CompleteWithReview(ctx, task.ID, 5, "great", "client-1"))
	// A retried request reports success without re-running the effects.
	require.NoError(t, env.tasks.CompleteWithReview(ctx, task.ID, 5, "great", "client-1"))

	entries, err := env.store.ListEntriesInRange(ctx, time.Now().Add(-time.Minute), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 3, "ledger entries must not be duplicated")

	agg, err := env.ratings.GetRating(ctx, "tasker-1")
	require.NoError(t, err)
	require.Equal(t, 1, agg.ReviewCount, "rating must be incremented once")

	require.Len(t, env.pub.named(domain.EventTaskCompleted), 1)
}

func TestCompleteWithReview_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := env.postTask(t, "client-1", 1000)

	err := env.tasks.CompleteWithReview(ctx, task.ID, 6, "", "client-1")
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
	err = env.tasks.CompleteWithReview(ctx, task.ID, 0, "", "client-1")
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)

	err = env.tasks.CompleteWithReview(ctx, task.ID, 4, "", "tasker-1")
	require.True(t, domain.IsKind(err, domain.KindNotAuthorized), "got %v", err)

	// A posted task cannot be completed.
	err = env.tasks.CompleteWithReview(ctx, task.ID, 4, "", "client-1")
	require.True(t, domain.IsKind(err, domain.KindInvalidTransition), "got %v", err)

	err = env.tasks.CompleteWithReview(ctx, "missing", 4, "", "client-1")
	require.True(t, domain.IsKind(err, domain.KindNotFound), "got %v", err)
}

func TestCancelTask_CascadesToOffers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task := env.postTask(t, "client-1", 600)
	env.bid(t, "tasker-1", task.ID, 600)
	env.bid(t, "tasker-2", task.ID, 550)

	_, err := env.tasks.CancelTask(ctx, task.ID, "tasker-1")
	require.True(t, domain.IsKind(err, domain.KindNotAuthorized), "got %v", err)

	got, err := env.tasks.CancelTask(ctx, task.ID, "client-1")
	require.NoError(t, err)
	require.Equal(t, domain.TaskCancelled, got.Status)
	require.Empty(t, got.TaskerID)

	offers, err := env.offers.ListOffers(ctx, task.ID)
	require.NoError(t, err)
	for _, o := range offers {
		require.Equal(t, domain.OfferCancelled, o.Status)
	}

	// Cancelling a cancelled task is an invalid transition.
	_, err = env.tasks.CancelTask(ctx, task.ID, "client-1")
	require.True(t, domain.IsKind(err, domain.KindInvalidTransition), "got %v", err)

	// A completed task cannot be cancelled.
	done := inProgressTask(t, env, 100)
	require.NoError(t, env.tasks.CompleteWithReview(ctx, done.ID, 4, "", "client-1"))
	_, err = env.tasks.CancelTask(ctx, done.ID, "client-1")
	require.True(t, domain.IsKind(err, domain.KindInvalidTransition), "got %v", err)
}
