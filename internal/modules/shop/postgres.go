package shop

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL shop repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetPublicPart(ctx context.Context, partID string) (string, float64, bool, error) {
	uid, err := uuid.Parse(partID)
	if err != nil {
		return "", 0, false, sql.ErrNoRows
	}
	var name string
	var price float64
	var isPublic bool
	err = r.db.QueryRowContext(ctx,
		`SELECT name, selling_price, is_public FROM parts WHERE id=$1`, uid).
		Scan(&name, &price, &isPublic)
	return name, price, isPublic, err
}

// CreateOrder reserves stock item by item; the first conditional decrement
// that affects no rows aborts the whole transaction.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *OnlineOrder) (bool, string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, "", err
	}
	defer tx.Rollback()

	for _, item := range o.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE parts SET quantity = quantity - $1, updated_at = $2
			WHERE id = $3 AND quantity >= $1`,
			item.Quantity, time.Now(), item.PartID)
		if err != nil {
			return false, "", fmt.Errorf("reserve stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, "", err
		}
		if n == 0 {
			return false, item.PartID.String(), nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stock_adjustments (id, part_id, delta, reason, actor)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New(), item.PartID, -item.Quantity,
			fmt.Sprintf("reserved for online order %s", o.OrderNumber), "")
		if err != nil {
			return false, "", fmt.Errorf("insert stock_adjustment: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO online_orders
		  (id, order_number, customer_name, phone, email, address, total_amount,
		   payment_method, delivery_method, status, is_archived)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,false)`,
		o.ID, o.OrderNumber, o.CustomerName, o.Phone, o.Email, o.Address,
		o.TotalAmount, o.PaymentMethod, o.DeliveryMethod, o.Status)
	if err != nil {
		return false, "", fmt.Errorf("insert online_order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO online_order_items (id, order_id, part_id, name, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, o.ID, item.PartID, item.Name, item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return false, "", fmt.Errorf("insert online_order_item: %w", err)
		}
	}

	return true, "", tx.Commit()
}

const orderColumns = `id, order_number, customer_name, phone, email, address, total_amount,
	payment_method, delivery_method, status, is_archived, tracking_number, courier,
	refund_reference, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*OnlineOrder, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM online_orders WHERE id=$1`, uid))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID.String())
	return o, err
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*OnlineOrder, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM online_orders WHERE order_number=$1`, orderNumber))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID.String())
	return o, err
}

func (r *postgresRepo) List(ctx context.Context, includeArchived bool, status string) ([]*OnlineOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM online_orders WHERE 1=1`
	args := []interface{}{}
	if !includeArchived {
		query += ` AND NOT is_archived`
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []*OnlineOrder
	for rows.Next() {
		o := &OnlineOrder{}
		var email, address, tracking, courier, refund sql.NullString
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Phone, &email,
			&address, &o.TotalAmount, &o.PaymentMethod, &o.DeliveryMethod, &o.Status,
			&o.IsArchived, &tracking, &courier, &refund, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Email, o.Address = email.String, address.String
		o.TrackingNumber, o.Courier, o.RefundReference = tracking.String, courier.String, refund.String
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE online_orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE online_orders SET is_archived=$1, updated_at=$2 WHERE id=$3`,
		archived, time.Now(), id)
	return err
}

func (r *postgresRepo) UpdateTracking(ctx context.Context, id, trackingNumber, courier string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE online_orders SET tracking_number=$1, courier=$2, updated_at=$3 WHERE id=$4`,
		trackingNumber, courier, time.Now(), id)
	return err
}

// Cancel flips the status conditionally before touching stock, so two
// concurrent cancels (or a cancel racing a shipment) cannot both restock.
func (r *postgresRepo) Cancel(ctx context.Context, id, refundReference string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE online_orders SET status=$1, refund_reference=NULLIF($2,''), updated_at=$3
		WHERE id=$4 AND status IN ($5, $6)`,
		StatusCancelled, refundReference, time.Now(), id, StatusPending, StatusProcessing)
	if err != nil {
		return false, fmt.Errorf("cancel online_order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 0 {
		return false, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT part_id, quantity FROM online_order_items WHERE order_id=$1`, id)
	if err != nil {
		return false, err
	}
	type restock struct {
		partID uuid.UUID
		qty    int
	}
	var restocks []restock
	for rows.Next() {
		var rs restock
		if err := rows.Scan(&rs.partID, &rs.qty); err != nil {
			rows.Close()
			return false, err
		}
		restocks = append(restocks, rs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, rs := range restocks {
		_, err = tx.ExecContext(ctx, `
			UPDATE parts SET quantity = quantity + $1, updated_at = $2 WHERE id = $3`,
			rs.qty, time.Now(), rs.partID)
		if err != nil {
			return false, fmt.Errorf("restock: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stock_adjustments (id, part_id, delta, reason, actor)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New(), rs.partID, rs.qty,
			fmt.Sprintf("online order %s cancelled", id), "")
		if err != nil {
			return false, fmt.Errorf("insert stock_adjustment: %w", err)
		}
	}

	return true, tx.Commit()
}

func scanOrder(row *sql.Row) (*OnlineOrder, error) {
	o := &OnlineOrder{}
	var email, address, tracking, courier, refund sql.NullString
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerName, &o.Phone, &email,
		&address, &o.TotalAmount, &o.PaymentMethod, &o.DeliveryMethod, &o.Status,
		&o.IsArchived, &tracking, &courier, &refund, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Email, o.Address = email.String, address.String
	o.TrackingNumber, o.Courier, o.RefundReference = tracking.String, courier.String, refund.String
	return o, nil
}

func (r *postgresRepo) listItems(ctx context.Context, orderID string) ([]*OnlineOrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, part_id, name, quantity, unit_price, line_total
		FROM online_order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OnlineOrderItem
	for rows.Next() {
		item := &OnlineOrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.PartID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
