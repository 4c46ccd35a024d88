package marketplace

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecaro09/tasko-sub000/internal/domain"
)

func TestApplyRating_Convergence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Seed (rating=4.0, reviewCount=3) with three 4s.
	for i := 0; i < 3; i++ {
		_, err := env.ratings.ApplyRating(ctx, "tasker-1", 4)
		require.NoError(t, err)
	}

	agg, err := env.ratings.ApplyRating(ctx, "tasker-1", 5)
	require.NoError(t, err)
	require.Equal(t, 4.25, agg.Rating)
	require.Equal(t, 4, agg.ReviewCount)
}

func TestApplyRating_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.ratings.ApplyRating(ctx, "tasker-1", 0)
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
	_, err = env.ratings.ApplyRating(ctx, "tasker-1", 6)
	require.True(t, domain.IsKind(err, domain.KindValidation), "got %v", err)
}

// Concurrent completions for the same tasker must not lose an update.
func TestApplyRating_NoLostUpdates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := env.ratings.ApplyRating(ctx, "tasker-1", 5)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	agg, err := env.ratings.GetRating(ctx, "tasker-1")
	require.NoError(t, err)
	require.Equal(t, n, agg.ReviewCount)
	require.InDelta(t, 5.0, agg.Rating, 1e-9)
}

func TestGetRating_UnknownTasker(t *testing.T) {
	env := newTestEnv(t)
	agg, err := env.ratings.GetRating(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, 0, agg.ReviewCount)
	require.Equal(t, 0.0, agg.Rating)
}
