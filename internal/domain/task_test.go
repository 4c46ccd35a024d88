package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	for _, s := range []string{"posted", "assigned", "in_progress", "completed", "cancelled"} {
		if _, err := ParseTaskStatus(s); err != nil {
			t.Fatalf("parse valid status %q failed: %v", s, err)
		}
	}
	if _, err := ParseTaskStatus("weird"); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]TaskStatus{
		{TaskPosted, TaskAssigned},
		{TaskPosted, TaskCancelled},
		{TaskAssigned, TaskInProgress},
		{TaskAssigned, TaskCancelled},
		{TaskInProgress, TaskCompleted},
		{TaskInProgress, TaskCancelled},
	}
	for _, tr := range allowed {
		require.True(t, CanTransition(tr[0], tr[1]), "%s -> %s should be allowed", tr[0], tr[1])
	}

	forbidden := [][2]TaskStatus{
		{TaskPosted, TaskInProgress},
		{TaskPosted, TaskCompleted},
		{TaskAssigned, TaskCompleted},
		{TaskCompleted, TaskCancelled},
		{TaskCompleted, TaskInProgress},
		{TaskCancelled, TaskPosted},
		{TaskCancelled, TaskCancelled},
	}
	for _, tr := range forbidden {
		require.False(t, CanTransition(tr[0], tr[1]), "%s -> %s should be forbidden", tr[0], tr[1])
	}
}

func TestRatingApply(t *testing.T) {
	agg := TaskerRating{TaskerID: "t1", Rating: 4.0, ReviewCount: 3}
	next := agg.Apply(5)
	require.Equal(t, 4.25, next.Rating)
	require.Equal(t, 4, next.ReviewCount)
}
