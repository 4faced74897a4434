package joborder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL job order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const selectJobOrder = `
	SELECT j.id, j.job_number, j.customer_id, j.vehicle_id, j.mechanic_id,
	       j.complaint, j.notes, j.estimated_cost, j.priority, j.status,
	       j.is_archived, j.invoice_id, j.created_at, j.updated_at,
	       c.name,
	       TRIM(CONCAT(v.make, ' ', v.model)),
	       v.plate,
	       COALESCE(TRIM(CONCAT(u.first_name, ' ', u.last_name)), '')
	FROM job_orders j
	JOIN customers c ON c.id = j.customer_id
	JOIN vehicles v ON v.id = j.vehicle_id
	LEFT JOIN users u ON u.id = j.mechanic_id`

func (r *postgresRepo) Create(ctx context.Context, j *JobOrder, bookingID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO job_orders
		  (id, job_number, customer_id, vehicle_id, mechanic_id, complaint,
		   notes, estimated_cost, priority, status, is_archived)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,false)`,
		j.ID, j.JobNumber, j.CustomerID, j.VehicleID, j.MechanicID,
		j.Complaint, j.Notes, j.EstimatedCost, j.Priority, j.Status)
	if err != nil {
		return fmt.Errorf("insert job_order: %w", err)
	}

	if bookingID != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings SET status='COMPLETED', updated_at=$1
			WHERE id=$2 AND status='CONFIRMED'`,
			time.Now(), bookingID)
		if err != nil {
			return fmt.Errorf("complete booking: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: booking %s is not in CONFIRMED state", ErrInvalidTransition, bookingID)
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*JobOrder, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	j, err := scanJobOrder(r.db.QueryRowContext(ctx, selectJobOrder+` WHERE j.id=$1`, uid))
	if err != nil {
		return nil, err
	}
	j.Parts, err = r.listLines(ctx, j.ID.String())
	return j, err
}

func (r *postgresRepo) GetByNumber(ctx context.Context, jobNumber string) (*JobOrder, error) {
	j, err := scanJobOrder(r.db.QueryRowContext(ctx, selectJobOrder+` WHERE j.job_number=$1`, jobNumber))
	if err != nil {
		return nil, err
	}
	j.Parts, err = r.listLines(ctx, j.ID.String())
	return j, err
}

func (r *postgresRepo) Track(ctx context.Context, jobNumber, plate string) (*JobOrder, error) {
	j, err := scanJobOrder(r.db.QueryRowContext(ctx,
		selectJobOrder+` WHERE j.job_number=$1 AND v.plate=$2`, jobNumber, plate))
	if err != nil {
		return nil, err
	}
	j.Parts, err = r.listLines(ctx, j.ID.String())
	return j, err
}

func (r *postgresRepo) List(ctx context.Context, includeArchived bool, status string) ([]*JobOrder, error) {
	query := selectJobOrder + ` WHERE 1=1`
	args := []interface{}{}
	if !includeArchived {
		query += ` AND NOT j.is_archived`
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND j.status=$%d`, len(args))
	}
	query += ` ORDER BY j.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*JobOrder
	for rows.Next() {
		j, err := scanJobOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, j)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, j *JobOrder) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE job_orders
		SET mechanic_id=$1, complaint=$2, notes=$3, estimated_cost=$4, priority=$5, updated_at=$6
		WHERE id=$7`,
		j.MechanicID, j.Complaint, j.Notes, j.EstimatedCost, j.Priority, time.Now(), j.ID)
	return err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE job_orders SET is_archived=$1, updated_at=$2 WHERE id=$3`,
		archived, time.Now(), id)
	return err
}

func (r *postgresRepo) GetPartPricing(ctx context.Context, partID string) (string, float64, error) {
	uid, err := uuid.Parse(partID)
	if err != nil {
		return "", 0, sql.ErrNoRows
	}
	var name string
	var price float64
	err = r.db.QueryRowContext(ctx,
		`SELECT name, selling_price FROM parts WHERE id=$1`, uid).Scan(&name, &price)
	return name, price, err
}

// AttachPart deducts stock with a conditional update and inserts the line in
// one transaction; both succeed or neither does. The job order row is
// re-claimed under invoice_id IS NULL inside the transaction, so a concurrent
// issuance cannot freeze the snapshot between the caller's read and the
// line insert.
func (r *postgresRepo) AttachPart(ctx context.Context, line *JobOrderPart) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	claim, err := tx.ExecContext(ctx, `
		UPDATE job_orders SET updated_at = $1
		WHERE id = $2 AND invoice_id IS NULL`,
		time.Now(), line.JobOrderID)
	if err != nil {
		return false, fmt.Errorf("claim job order: %w", err)
	}
	if n, err := claim.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, ErrAlreadyInvoiced
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE parts SET quantity = quantity - $1, updated_at = $2
		WHERE id = $3 AND quantity >= $1`,
		line.Quantity, time.Now(), line.PartID)
	if err != nil {
		return false, fmt.Errorf("deduct stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO job_order_parts (id, job_order_id, part_id, part_name, quantity, unit_price)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		line.ID, line.JobOrderID, line.PartID, line.PartName, line.Quantity, line.UnitPrice)
	if err != nil {
		return false, fmt.Errorf("insert job_order_part: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_adjustments (id, part_id, delta, reason, actor)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.New(), line.PartID, -line.Quantity,
		fmt.Sprintf("attached to job order %s", line.JobOrderID), "")
	if err != nil {
		return false, fmt.Errorf("insert stock_adjustment: %w", err)
	}

	return true, tx.Commit()
}

func (r *postgresRepo) DetachPart(ctx context.Context, jobOrderID, lineID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var partID uuid.UUID
	var quantity int
	err = tx.QueryRowContext(ctx, `
		DELETE FROM job_order_parts WHERE id=$1 AND job_order_id=$2
		RETURNING part_id, quantity`,
		lineID, jobOrderID).Scan(&partID, &quantity)
	if err != nil {
		return fmt.Errorf("delete job_order_part: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE parts SET quantity = quantity + $1, updated_at = $2 WHERE id = $3`,
		quantity, time.Now(), partID)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_adjustments (id, part_id, delta, reason, actor)
		VALUES ($1,$2,$3,$4,$5)`,
		uuid.New(), partID, quantity,
		fmt.Sprintf("detached from job order %s", jobOrderID), "")
	if err != nil {
		return fmt.Errorf("insert stock_adjustment: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) GetLine(ctx context.Context, jobOrderID, lineID string) (*JobOrderPart, error) {
	line := &JobOrderPart{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, job_order_id, part_id, part_name, quantity, unit_price, created_at
		FROM job_order_parts WHERE id=$1 AND job_order_id=$2`,
		lineID, jobOrderID).Scan(
		&line.ID, &line.JobOrderID, &line.PartID, &line.PartName,
		&line.Quantity, &line.UnitPrice, &line.CreatedAt)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJobOrder(row *sql.Row) (*JobOrder, error)       { return scanJob(row) }
func scanJobOrderRows(rows *sql.Rows) (*JobOrder, error) { return scanJob(rows) }

func scanJob(row rowScanner) (*JobOrder, error) {
	j := &JobOrder{}
	var mechanicID, invoiceID sql.NullString
	err := row.Scan(
		&j.ID, &j.JobNumber, &j.CustomerID, &j.VehicleID, &mechanicID,
		&j.Complaint, &j.Notes, &j.EstimatedCost, &j.Priority, &j.Status,
		&j.IsArchived, &invoiceID, &j.CreatedAt, &j.UpdatedAt,
		&j.CustomerName, &j.VehicleDesc, &j.Plate, &j.MechanicName)
	if err != nil {
		return nil, err
	}
	if mechanicID.Valid {
		uid, _ := uuid.Parse(mechanicID.String)
		j.MechanicID = &uid
	}
	if invoiceID.Valid {
		uid, _ := uuid.Parse(invoiceID.String)
		j.InvoiceID = &uid
	}
	return j, nil
}

func (r *postgresRepo) listLines(ctx context.Context, jobOrderID string) ([]*JobOrderPart, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, job_order_id, part_id, part_name, quantity, unit_price, created_at
		FROM job_order_parts WHERE job_order_id=$1 ORDER BY created_at ASC`, jobOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []*JobOrderPart
	for rows.Next() {
		line := &JobOrderPart{}
		if err := rows.Scan(&line.ID, &line.JobOrderID, &line.PartID, &line.PartName,
			&line.Quantity, &line.UnitPrice, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
