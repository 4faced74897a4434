package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL wallet repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// earningsQuery sums repair payments with settled online shop orders.
const earningsQuery = `
	SELECT
	  COALESCE((SELECT SUM(amount) FROM payments), 0) +
	  COALESCE((SELECT SUM(total_amount) FROM online_orders
	            WHERE status IN ('SHIPPED', 'COMPLETED')), 0)`

func (r *postgresRepo) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := r.db.QueryRowContext(ctx, earningsQuery).Scan(&s.TotalEarnings)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT total_withdrawn FROM wallet WHERE id = 1`).Scan(&s.TotalWithdrawn)
	if err != nil {
		return nil, err
	}
	s.AvailableBalance = s.TotalEarnings - s.TotalWithdrawn
	return s, nil
}

// ExecutePayout recomputes the balance under a row lock on the single
// wallet row so concurrent payouts serialize.
func (r *postgresRepo) ExecutePayout(ctx context.Context, p *Payout) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var totalWithdrawn float64
	err = tx.QueryRowContext(ctx,
		`SELECT total_withdrawn FROM wallet WHERE id = 1 FOR UPDATE`).Scan(&totalWithdrawn)
	if err != nil {
		return 0, fmt.Errorf("lock wallet: %w", err)
	}

	var earnings float64
	if err := tx.QueryRowContext(ctx, earningsQuery).Scan(&earnings); err != nil {
		return 0, fmt.Errorf("compute earnings: %w", err)
	}

	available := earnings - totalWithdrawn
	if available <= 0 {
		return 0, nil
	}

	p.ID = uuid.New()
	p.Amount = available
	p.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payouts (id, amount, method, destination, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Amount, p.Method, p.Destination, p.ActorID, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert payout: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallet SET total_withdrawn = total_withdrawn + $1, updated_at = $2
		WHERE id = 1`,
		available, time.Now())
	if err != nil {
		return 0, fmt.Errorf("update wallet: %w", err)
	}

	return available, tx.Commit()
}

func (r *postgresRepo) ListPayouts(ctx context.Context) ([]*Payout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount, method, destination, actor_id, created_at
		FROM payouts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payouts []*Payout
	for rows.Next() {
		p := &Payout{}
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Destination, &p.ActorID, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
