package domain

// TaskerRating is the running review aggregate for a tasker. It is only
// ever updated incrementally, never recomputed from scratch.
type TaskerRating struct {
	TaskerID    string  `json:"tasker_id"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// Apply folds one new rating into the aggregate.
func (r TaskerRating) Apply(newRating int) TaskerRating {
	count := r.ReviewCount + 1
	avg := (r.Rating*float64(r.ReviewCount) + float64(newRating)) / float64(count)
	return TaskerRating{TaskerID: r.TaskerID, Rating: avg, ReviewCount: count}
}
