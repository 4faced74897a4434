package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL inventory repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const partColumns = `id, part_number, name, quantity, min_threshold, buying_price, selling_price, is_public, created_at, updated_at`

func (r *postgresRepo) CreatePart(ctx context.Context, p *Part) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parts (id, part_number, name, quantity, min_threshold, buying_price, selling_price, is_public)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PartNumber, p.Name, p.Quantity, p.MinThreshold, p.BuyingPrice, p.SellingPrice, p.IsPublic)
	return err
}

func (r *postgresRepo) GetPartByID(ctx context.Context, id string) (*Part, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	return scanPart(r.db.QueryRowContext(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id=$1`, uid))
}

func (r *postgresRepo) ListParts(ctx context.Context) ([]*Part, error) {
	return r.queryParts(ctx, `SELECT `+partColumns+` FROM parts ORDER BY part_number ASC`)
}

func (r *postgresRepo) ListPublicParts(ctx context.Context) ([]*Part, error) {
	return r.queryParts(ctx, `SELECT `+partColumns+` FROM parts WHERE is_public ORDER BY name ASC`)
}

func (r *postgresRepo) ListLowStock(ctx context.Context) ([]*Part, error) {
	return r.queryParts(ctx, `SELECT `+partColumns+` FROM parts WHERE quantity <= min_threshold ORDER BY quantity ASC`)
}

func (r *postgresRepo) UpdatePart(ctx context.Context, p *Part) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE parts SET name=$1, min_threshold=$2, buying_price=$3, selling_price=$4, is_public=$5, updated_at=$6
		WHERE id=$7`,
		p.Name, p.MinThreshold, p.BuyingPrice, p.SellingPrice, p.IsPublic, time.Now(), p.ID)
	return err
}

// AdjustQuantity uses a conditional update so two concurrent deductions can
// never both succeed against insufficient stock.
func (r *postgresRepo) AdjustQuantity(ctx context.Context, partID string, delta int, reason, actor string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE parts SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3 AND quantity + $1 >= 0`,
		delta, time.Now(), partID)
	if err != nil {
		return false, fmt.Errorf("adjust quantity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_adjustments (id, part_id, delta, reason, actor)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.New(), partID, delta, reason, actor)
	if err != nil {
		return false, fmt.Errorf("insert stock_adjustment: %w", err)
	}

	return true, tx.Commit()
}

func (r *postgresRepo) CountReferences(ctx context.Context, partID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM job_order_parts WHERE part_id=$1)
		     + (SELECT COUNT(*) FROM invoice_lines WHERE part_id=$1)`,
		partID).Scan(&count)
	return count, err
}

func (r *postgresRepo) DeletePart(ctx context.Context, partID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM parts WHERE id=$1`, partID)
	return err
}

func (r *postgresRepo) ListAdjustments(ctx context.Context, partID string) ([]*StockAdjustment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, part_id, delta, reason, actor, created_at
		FROM stock_adjustments WHERE part_id=$1 ORDER BY created_at DESC`, partID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var adjustments []*StockAdjustment
	for rows.Next() {
		a := &StockAdjustment{}
		if err := rows.Scan(&a.ID, &a.PartID, &a.Delta, &a.Reason, &a.Actor, &a.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

func scanPart(row *sql.Row) (*Part, error) {
	p := &Part{}
	err := row.Scan(&p.ID, &p.PartNumber, &p.Name, &p.Quantity, &p.MinThreshold,
		&p.BuyingPrice, &p.SellingPrice, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) queryParts(ctx context.Context, query string, args ...interface{}) ([]*Part, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var parts []*Part
	for rows.Next() {
		p := &Part{}
		if err := rows.Scan(&p.ID, &p.PartNumber, &p.Name, &p.Quantity, &p.MinThreshold,
			&p.BuyingPrice, &p.SellingPrice, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}
