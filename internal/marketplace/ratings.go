package marketplace

import (
	"context"

	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

// RatingAggregator maintains the running average rating and review count
// per tasker. Updates are incremental; the aggregate is never recomputed
// from scratch.
type RatingAggregator struct {
	store store.Store
	log   *zap.Logger
}

func NewRatingAggregator(st store.Store, log *zap.Logger) *RatingAggregator {
	return &RatingAggregator{store: st, log: log}
}

// ApplyRating folds one new rating into the tasker's aggregate as a
// single atomic read-modify-write, so concurrent completions for the same
// tasker cannot lose an update.
func (a *RatingAggregator) ApplyRating(ctx context.Context, taskerID string, rating int) (domain.TaskerRating, error) {
	if rating < 1 || rating > 5 {
		return domain.TaskerRating{}, domain.Validation("rating must be between 1 and 5")
	}
	agg, err := a.store.ApplyRating(ctx, taskerID, rating)
	if err != nil {
		return domain.TaskerRating{}, err
	}
	a.log.Debug("rating applied",
		zap.String("tasker_id", taskerID),
		zap.Float64("rating", agg.Rating),
		zap.Int("review_count", agg.ReviewCount))
	return agg, nil
}

// GetRating returns the tasker's aggregate; taskers with no reviews yet
// report a zero aggregate rather than not-found.
func (a *RatingAggregator) GetRating(ctx context.Context, taskerID string) (domain.TaskerRating, error) {
	return a.store.GetRating(ctx, taskerID)
}
