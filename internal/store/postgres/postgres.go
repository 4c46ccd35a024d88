// Package postgres implements the marketplace Store on PostgreSQL. Every
// multi-entity unit runs in a single pgx transaction with its state guards
// in the UPDATE's WHERE clause; a guard miss (zero rows affected) rolls
// back and surfaces a conflict.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecaro09/tasko-sub000/internal/domain"
	"github.com/ecaro09/tasko-sub000/internal/store"
)

type Postgres struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Postgres)(nil)

func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const taskColumns = `id, title, description, category, price, location, schedule_date,
	client_id, COALESCE(tasker_id, ''), status, service_fee, payment_method,
	created_at, updated_at, completed_at`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var status string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category, &t.Price, &t.Location, &t.ScheduleDate,
		&t.ClientID, &t.TaskerID, &status, &t.ServiceFee, &t.PaymentMethod,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	return &t, nil
}

func (p *Postgres) CreateTask(ctx context.Context, t *domain.Task) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, category, price, location, schedule_date,
		                    client_id, status, service_fee, payment_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`,
		t.ID, t.Title, t.Description, t.Category, t.Price, t.Location, t.ScheduleDate,
		t.ClientID, string(t.Status), t.ServiceFee, t.PaymentMethod, t.CreatedAt,
	)
	return err
}

func (p *Postgres) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(p.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("task", id)
	}
	return t, err
}

func (p *Postgres) ListTasksByClient(ctx context.Context, clientID string) ([]domain.Task, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (p *Postgres) UpdateTaskStatus(ctx context.Context, id string, from, to domain.TaskStatus) error {
	res, err := p.pool.Exec(ctx,
		`UPDATE tasks SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		t, gerr := p.GetTask(ctx, id)
		if gerr != nil {
			return gerr
		}
		return domain.Conflict("task", id, "status is "+string(t.Status)+", expected "+string(from))
	}
	return nil
}

const offerColumns = `id, task_id, tasker_id, client_id, amount, message, status, date_created, date_updated`

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	var status string
	err := row.Scan(&o.ID, &o.TaskID, &o.TaskerID, &o.ClientID, &o.Amount, &o.Message,
		&status, &o.DateCreated, &o.DateUpdated)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OfferStatus(status)
	return &o, nil
}

func (p *Postgres) CreateOffer(ctx context.Context, o *domain.Offer) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO offers (id, task_id, tasker_id, client_id, amount, message, status, date_created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.TaskID, o.TaskerID, o.ClientID, o.Amount, o.Message, string(o.Status), o.DateCreated)
	return err
}

func (p *Postgres) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	o, err := scanOffer(p.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("offer", id)
	}
	return o, err
}

func (p *Postgres) ListOffersByTask(ctx context.Context, taskID string) ([]domain.Offer, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE task_id = $1 ORDER BY date_created ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *o)
	}
	return offers, rows.Err()
}

func (p *Postgres) UpdateOfferStatus(ctx context.Context, id string, from, to domain.OfferStatus) error {
	res, err := p.pool.Exec(ctx,
		`UPDATE offers SET status = $3, date_updated = NOW() WHERE id = $1 AND status = $2`,
		id, string(from), string(to))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		o, gerr := p.GetOffer(ctx, id)
		if gerr != nil {
			return gerr
		}
		return domain.Conflict("offer", id, "status is "+string(o.Status)+", expected "+string(from))
	}
	return nil
}

// AssignTask accepts the offer, rejects its pending siblings and assigns
// the task, all in one transaction. The task row is locked first so two
// racing accepts serialize; the loser sees the status guard miss.
func (p *Postgres) AssignTask(ctx context.Context, taskID, offerID string) (string, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var taskStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`, taskID).Scan(&taskStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.NotFound("task", taskID)
	}
	if err != nil {
		return "", err
	}
	if taskStatus != string(domain.TaskPosted) {
		return "", domain.Conflict("task", taskID, "task is "+taskStatus+", no longer posted")
	}

	var taskerID, offerStatus string
	err = tx.QueryRow(ctx,
		`SELECT tasker_id, status FROM offers WHERE id = $1 AND task_id = $2`,
		offerID, taskID).Scan(&taskerID, &offerStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.NotFound("offer", offerID)
	}
	if err != nil {
		return "", err
	}
	if offerStatus != string(domain.OfferPending) {
		return "", domain.Conflict("offer", offerID, "offer is "+offerStatus+", no longer pending")
	}

	_, err = tx.Exec(ctx,
		`UPDATE offers SET status = 'accepted', date_updated = NOW() WHERE id = $1`, offerID)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx,
		`UPDATE offers SET status = 'rejected', date_updated = NOW()
		 WHERE task_id = $1 AND id <> $2 AND status = 'pending'`,
		taskID, offerID)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx,
		`UPDATE tasks SET status = 'assigned', tasker_id = $2, updated_at = NOW() WHERE id = $1`,
		taskID, taskerID)
	if err != nil {
		return "", err
	}

	if err = tx.Commit(ctx); err != nil {
		return "", err
	}
	return taskerID, nil
}

// CompleteTask writes the review, ledger entries, payment, rating upsert
// and status transition as one transaction. An existing review short
// circuits the whole unit: the retried request succeeded earlier.
func (p *Postgres) CompleteTask(ctx context.Context, c store.Completion) (bool, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var existing string
	err = tx.QueryRow(ctx, `SELECT id FROM reviews WHERE task_id = $1`, c.TaskID).Scan(&existing)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	res, err := tx.Exec(ctx,
		`UPDATE tasks SET status = 'completed', completed_at = $2, updated_at = $2
		 WHERE id = $1 AND status = 'in_progress'`,
		c.TaskID, c.CompletedAt)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 0 {
		return false, domain.Conflict("task", c.TaskID, "task not in_progress")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO reviews (id, task_id, tasker_id, client_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.Review.ID, c.Review.TaskID, c.Review.TaskerID, c.Review.ClientID,
		c.Review.Rating, c.Review.Comment, c.Review.CreatedAt)
	if err != nil {
		return false, err
	}

	for _, e := range c.Entries {
		_, err = tx.Exec(ctx,
			`INSERT INTO ledger_entries (id, type, amount, source_task_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.ID, string(e.Type), e.Amount, e.SourceTaskID, e.CreatedAt)
		if err != nil {
			return false, err
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, task_id, client_id, tasker_id, amount, escrow_held, status, method, created_at, released_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.Payment.ID, c.Payment.TaskID, c.Payment.ClientID, c.Payment.TaskerID, c.Payment.Amount,
		c.Payment.EscrowHeld, string(c.Payment.Status), c.Payment.Method, c.Payment.CreatedAt, c.Payment.ReleasedAt)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO tasker_ratings (tasker_id, rating, review_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (tasker_id) DO UPDATE SET
		   rating = (tasker_ratings.rating * tasker_ratings.review_count + $2) / (tasker_ratings.review_count + 1),
		   review_count = tasker_ratings.review_count + 1`,
		c.Review.TaskerID, float64(c.Rating))
	if err != nil {
		return false, err
	}

	return false, tx.Commit(ctx)
}

// CancelTask cancels the task and every open offer on it. Re-running on a
// cancelled task touches nothing, which keeps the cascade idempotent.
func (p *Postgres) CancelTask(ctx context.Context, taskID string) (int, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1 FOR UPDATE`, taskID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.NotFound("task", taskID)
	}
	if err != nil {
		return 0, err
	}
	if status == string(domain.TaskCompleted) {
		return 0, domain.Conflict("task", taskID, "completed tasks cannot be cancelled")
	}

	res, err := tx.Exec(ctx,
		`UPDATE offers SET status = 'cancelled', date_updated = NOW()
		 WHERE task_id = $1 AND status IN ('pending', 'accepted')`, taskID)
	if err != nil {
		return 0, err
	}
	cancelled := int(res.RowsAffected())

	// tasker_id is cleared so the assignment invariant (non-null iff
	// assigned/in_progress/completed) holds after cancellation.
	_, err = tx.Exec(ctx,
		`UPDATE tasks SET status = 'cancelled', tasker_id = NULL, updated_at = NOW()
		 WHERE id = $1 AND status <> 'cancelled'`,
		taskID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return cancelled, nil
}

func (p *Postgres) GetReviewByTask(ctx context.Context, taskID string) (*domain.Review, error) {
	var r domain.Review
	err := p.pool.QueryRow(ctx,
		`SELECT id, task_id, tasker_id, client_id, rating, comment, created_at
		 FROM reviews WHERE task_id = $1`, taskID).
		Scan(&r.ID, &r.TaskID, &r.TaskerID, &r.ClientID, &r.Rating, &r.Comment, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("review", taskID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) GetPaymentByTask(ctx context.Context, taskID string) (*domain.Payment, error) {
	var pay domain.Payment
	var status string
	err := p.pool.QueryRow(ctx,
		`SELECT id, task_id, client_id, tasker_id, amount, escrow_held, status, method, created_at, released_at
		 FROM payments WHERE task_id = $1`, taskID).
		Scan(&pay.ID, &pay.TaskID, &pay.ClientID, &pay.TaskerID, &pay.Amount,
			&pay.EscrowHeld, &status, &pay.Method, &pay.CreatedAt, &pay.ReleasedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("payment", taskID)
	}
	if err != nil {
		return nil, err
	}
	pay.Status = domain.PaymentStatus(status)
	return &pay, nil
}

// ApplyRating folds one rating into the aggregate in a single upsert, so
// concurrent completions for the same tasker cannot lose an update.
func (p *Postgres) ApplyRating(ctx context.Context, taskerID string, rating int) (domain.TaskerRating, error) {
	var agg domain.TaskerRating
	err := p.pool.QueryRow(ctx,
		`INSERT INTO tasker_ratings (tasker_id, rating, review_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (tasker_id) DO UPDATE SET
		   rating = (tasker_ratings.rating * tasker_ratings.review_count + $2) / (tasker_ratings.review_count + 1),
		   review_count = tasker_ratings.review_count + 1
		 RETURNING tasker_id, rating, review_count`,
		taskerID, float64(rating)).
		Scan(&agg.TaskerID, &agg.Rating, &agg.ReviewCount)
	return agg, err
}

func (p *Postgres) GetRating(ctx context.Context, taskerID string) (domain.TaskerRating, error) {
	var agg domain.TaskerRating
	err := p.pool.QueryRow(ctx,
		`SELECT tasker_id, rating, review_count FROM tasker_ratings WHERE tasker_id = $1`, taskerID).
		Scan(&agg.TaskerID, &agg.Rating, &agg.ReviewCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TaskerRating{TaskerID: taskerID}, nil
	}
	return agg, err
}

func (p *Postgres) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	for _, e := range entries {
		_, err = tx.Exec(ctx,
			`INSERT INTO ledger_entries (id, type, amount, source_task_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.ID, string(e.Type), e.Amount, e.SourceTaskID, e.CreatedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *Postgres) ListEntriesInRange(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, type, amount, source_task_id, created_at
		 FROM ledger_entries WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.Amount, &e.SourceTaskID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.EntryType(typ)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *Postgres) UpsertSummary(ctx context.Context, s *domain.EarningsSummary) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO earnings_summary (id, period, type, commission_income, service_fee_income,
		                               subscription_income, featured_income, total_income, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   commission_income = EXCLUDED.commission_income,
		   service_fee_income = EXCLUDED.service_fee_income,
		   subscription_income = EXCLUDED.subscription_income,
		   featured_income = EXCLUDED.featured_income,
		   total_income = EXCLUDED.total_income,
		   updated_at = EXCLUDED.updated_at`,
		s.ID, s.Period, string(s.Type), s.CommissionIncome, s.ServiceFeeIncome,
		s.SubscriptionIncome, s.FeaturedIncome, s.TotalIncome, s.UpdatedAt)
	return err
}

func (p *Postgres) GetSummary(ctx context.Context, id string) (*domain.EarningsSummary, error) {
	var s domain.EarningsSummary
	var typ string
	err := p.pool.QueryRow(ctx,
		`SELECT id, period, type, commission_income, service_fee_income, subscription_income,
		        featured_income, total_income, updated_at
		 FROM earnings_summary WHERE id = $1`, id).
		Scan(&s.ID, &s.Period, &typ, &s.CommissionIncome, &s.ServiceFeeIncome,
			&s.SubscriptionIncome, &s.FeaturedIncome, &s.TotalIncome, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("earnings_summary", id)
	}
	if err != nil {
		return nil, err
	}
	s.Type = domain.SummaryPeriod(typ)
	return &s, nil
}

func (p *Postgres) ListDailySummaries(ctx context.Context, monthKey string) ([]domain.EarningsSummary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, period, type, commission_income, service_fee_income, subscription_income,
		        featured_income, total_income, updated_at
		 FROM earnings_summary WHERE type = 'daily' AND period LIKE $1 ORDER BY period ASC`,
		monthKey+"-%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EarningsSummary
	for rows.Next() {
		var s domain.EarningsSummary
		var typ string
		if err := rows.Scan(&s.ID, &s.Period, &typ, &s.CommissionIncome, &s.ServiceFeeIncome,
			&s.SubscriptionIncome, &s.FeaturedIncome, &s.TotalIncome, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Type = domain.SummaryPeriod(typ)
		out = append(out, s)
	}
	return out, rows.Err()
}
