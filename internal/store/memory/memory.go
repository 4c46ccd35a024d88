// Package memory is an in-process Store used by tests and local runs. A
// single mutex stands in for the database transaction: every atomic unit
// holds it for the whole write set, so the same all-or-nothing and guard
// semantics apply as in the postgres implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

type Memory struct {
	mu        sync.Mutex
	tasks     map[string]domain.Task
	offers    map[string]domain.Offer
	reviews   map[string]domain.Review  // keyed by task id
	payments  map[string]domain.Payment // keyed by task id
	ratings   map[string]domain.TaskerRating
	entries   []domain.LedgerEntry
	summaries map[string]domain.EarningsSummary
}

var _ store.Store = (*Memory)(nil)

func New() *Memory {
	return &Memory{
		tasks:     make(map[string]domain.Task),
		offers:    make(map[string]domain.Offer),
		reviews:   make(map[string]domain.Review),
		payments:  make(map[string]domain.Payment),
		ratings:   make(map[string]domain.TaskerRating),
		summaries: make(map[string]domain.EarningsSummary),
	}
}

func (m *Memory) CreateTask(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m *Memory) GetTask(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.NotFound("task", id)
	}
	cp := t
	return &cp, nil
}

func (m *Memory) ListTasksByClient(_ context.Context, clientID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if t.ClientID == clientID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateTaskStatus(_ context.Context, id string, from, to domain.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return domain.NotFound("task", id)
	}
	if t.Status != from {
		return domain.Conflict("task", id, "status is "+string(t.Status)+", expected "+string(from))
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	m.tasks[id] = t
	return nil
}

func (m *Memory) CreateOffer(_ context.Context, o *domain.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[o.ID] = *o
	return nil
}

func (m *Memory) GetOffer(_ context.Context, id string) (*domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return nil, domain.NotFound("offer", id)
	}
	cp := o
	return &cp, nil
}

func (m *Memory) ListOffersByTask(_ context.Context, taskID string) ([]domain.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Offer
	for _, o := range m.offers {
		if o.TaskID == taskID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.Before(out[j].DateCreated) })
	return out, nil
}

func (m *Memory) UpdateOfferStatus(_ context.Context, id string, from, to domain.OfferStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	if !ok {
		return domain.NotFound("offer", id)
	}
	if o.Status != from {
		return domain.Conflict("offer", id, "status is "+string(o.Status)+", expected "+string(from))
	}
	now := time.Now()
	o.Status = to
	o.DateUpdated = &now
	m.offers[id] = o
	return nil
}

func (m *Memory) AssignTask(_ context.Context, taskID, offerID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return "", domain.NotFound("task", taskID)
	}
	if t.Status != domain.TaskPosted {
		return "", domain.Conflict("task", taskID, "task is "+string(t.Status)+", no longer posted")
	}
	o, ok := m.offers[offerID]
	if !ok {
		return "", domain.NotFound("offer", offerID)
	}
	if o.TaskID != taskID {
		return "", domain.NotFound("offer", offerID)
	}
	if o.Status != domain.OfferPending {
		return "", domain.Conflict("offer", offerID, "offer is "+string(o.Status)+", no longer pending")
	}

	now := time.Now()
	o.Status = domain.OfferAccepted
	o.DateUpdated = &now
	m.offers[offerID] = o

	for id, sib := range m.offers {
		if id != offerID && sib.TaskID == taskID && sib.Status == domain.OfferPending {
			sib.Status = domain.OfferRejected
			sib.DateUpdated = &now
			m.offers[id] = sib
		}
	}

	t.Status = domain.TaskAssigned
	t.TaskerID = o.TaskerID
	t.UpdatedAt = now
	m.tasks[taskID] = t
	return o.TaskerID, nil
}

func (m *Memory) CompleteTask(_ context.Context, c store.Completion) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reviews[c.TaskID]; exists {
		return true, nil
	}
	t, ok := m.tasks[c.TaskID]
	if !ok {
		return false, domain.NotFound("task", c.TaskID)
	}
	if t.Status != domain.TaskInProgress {
		return false, domain.Conflict("task", c.TaskID, "task is "+string(t.Status)+", not in_progress")
	}

	m.reviews[c.TaskID] = c.Review
	m.entries = append(m.entries, c.Entries...)
	m.payments[c.TaskID] = c.Payment

	agg, ok := m.ratings[t.TaskerID]
	if !ok {
		agg = domain.TaskerRating{TaskerID: t.TaskerID}
	}
	m.ratings[t.TaskerID] = agg.Apply(c.Rating)

	completedAt := c.CompletedAt
	t.Status = domain.TaskCompleted
	t.CompletedAt = &completedAt
	t.UpdatedAt = completedAt
	m.tasks[c.TaskID] = t
	return false, nil
}

func (m *Memory) CancelTask(_ context.Context, taskID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return 0, domain.NotFound("task", taskID)
	}
	if t.Status == domain.TaskCompleted {
		return 0, domain.Conflict("task", taskID, "completed tasks cannot be cancelled")
	}

	now := time.Now()
	count := 0
	for id, o := range m.offers {
		if o.TaskID == taskID && (o.Status == domain.OfferPending || o.Status == domain.OfferAccepted) {
			o.Status = domain.OfferCancelled
			o.DateUpdated = &now
			m.offers[id] = o
			count++
		}
	}
	if t.Status != domain.TaskCancelled {
		t.Status = domain.TaskCancelled
		t.TaskerID = ""
		t.UpdatedAt = now
		m.tasks[taskID] = t
	}
	return count, nil
}

func (m *Memory) GetReviewByTask(_ context.Context, taskID string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[taskID]
	if !ok {
		return nil, domain.NotFound("review", taskID)
	}
	cp := r
	return &cp, nil
}

func (m *Memory) GetPaymentByTask(_ context.Context, taskID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[taskID]
	if !ok {
		return nil, domain.NotFound("payment", taskID)
	}
	cp := p
	return &cp, nil
}

func (m *Memory) ApplyRating(_ context.Context, taskerID string, rating int) (domain.TaskerRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg, ok := m.ratings[taskerID]
	if !ok {
		agg = domain.TaskerRating{TaskerID: taskerID}
	}
	next := agg.Apply(rating)
	m.ratings[taskerID] = next
	return next, nil
}

func (m *Memory) GetRating(_ context.Context, taskerID string) (domain.TaskerRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agg, ok := m.ratings[taskerID]
	if !ok {
		return domain.TaskerRating{TaskerID: taskerID}, nil
	}
	return agg, nil
}

func (m *Memory) AppendEntries(_ context.Context, entries []domain.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *Memory) ListEntriesInRange(_ context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) UpsertSummary(_ context.Context, s *domain.EarningsSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.ID] = *s
	return nil
}

func (m *Memory) GetSummary(_ context.Context, id string) (*domain.EarningsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[id]
	if !ok {
		return nil, domain.NotFound("earnings_summary", id)
	}
	cp := s
	return &cp, nil
}

func (m *Memory) ListDailySummaries(_ context.Context, monthKey string) ([]domain.EarningsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EarningsSummary
	for _, s := range m.summaries {
		if s.Type == domain.PeriodDaily && strings.HasPrefix(s.Period, monthKey+"-") {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}
