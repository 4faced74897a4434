package billing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL billing repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetBillingSource(ctx context.Context, jobOrderID string) (*BillingSource, error) {
	uid, err := uuid.Parse(jobOrderID)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	src := &BillingSource{}
	var invoiceID sql.NullString
	err = r.db.QueryRowContext(ctx, `
		SELECT j.id, j.job_number, j.customer_id, j.estimated_cost, j.invoice_id,
		       c.name, TRIM(CONCAT(v.make, ' ', v.model)), v.plate
		FROM job_orders j
		JOIN customers c ON c.id = j.customer_id
		JOIN vehicles v ON v.id = j.vehicle_id
		WHERE j.id=$1`, uid).Scan(
		&src.JobOrderID, &src.JobNumber, &src.CustomerID, &src.EstimatedCost,
		&invoiceID, &src.CustomerName, &src.VehicleDesc, &src.Plate)
	if err != nil {
		return nil, err
	}
	if invoiceID.Valid {
		iid, _ := uuid.Parse(invoiceID.String)
		src.InvoiceID = &iid
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT part_id, part_name, quantity, unit_price
		FROM job_order_parts WHERE job_order_id=$1 ORDER BY created_at ASC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		l := &SourceLine{}
		if err := rows.Scan(&l.PartID, &l.PartName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		src.Lines = append(src.Lines, l)
	}
	return src, rows.Err()
}

// InsertInvoice claims JobOrder.invoice_id with a conditional update so two
// concurrent issuances cannot both create an invoice.
func (r *postgresRepo) InsertInvoice(ctx context.Context, inv *Invoice) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE job_orders SET invoice_id=$1, updated_at=$2
		WHERE id=$3 AND invoice_id IS NULL`,
		inv.ID, time.Now(), inv.JobOrderID)
	if err != nil {
		return false, fmt.Errorf("claim invoice slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices
		  (id, invoice_number, job_order_id, customer_id, customer_name,
		   vehicle_desc, plate, subtotal, discount, tax, total_amount, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		inv.ID, inv.InvoiceNumber, inv.JobOrderID, inv.CustomerID, inv.CustomerName,
		inv.VehicleDesc, inv.Plate, inv.Subtotal, inv.Discount, inv.Tax,
		inv.TotalAmount, inv.Status)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	for _, l := range inv.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, part_id, description, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			l.ID, inv.ID, l.PartID, l.Description, l.Quantity, l.UnitPrice, l.LineTotal)
		if err != nil {
			return false, fmt.Errorf("insert invoice_line: %w", err)
		}
	}

	return true, tx.Commit()
}

const invoiceColumns = `id, invoice_number, job_order_id, customer_id, customer_name,
	vehicle_desc, plate, subtotal, discount, tax, total_amount, status, amount_paid, created_at`

func (r *postgresRepo) GetInvoiceByID(ctx context.Context, id string) (*Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	inv, err := scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, uid))
	if err != nil {
		return nil, err
	}
	inv.Lines, err = r.listLines(ctx, inv.ID.String())
	return inv, err
}

func (r *postgresRepo) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number))
	if err != nil {
		return nil, err
	}
	inv.Lines, err = r.listLines(ctx, inv.ID.String())
	return inv, err
}

func (r *postgresRepo) ListInvoices(ctx context.Context, status string) ([]*Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []*Invoice
	for rows.Next() {
		inv := &Invoice{}
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.JobOrderID, &inv.CustomerID,
			&inv.CustomerName, &inv.VehicleDesc, &inv.Plate, &inv.Subtotal, &inv.Discount,
			&inv.Tax, &inv.TotalAmount, &inv.Status, &inv.AmountPaid, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// AppendPayment holds a row lock on the invoice while checking the running
// sum, so concurrent payments cannot jointly exceed the total.
func (r *postgresRepo) AppendPayment(ctx context.Context, p *Payment) (*Invoice, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var total, paid float64
	err = tx.QueryRowContext(ctx,
		`SELECT total_amount, amount_paid FROM invoices WHERE id=$1 FOR UPDATE`,
		p.InvoiceID).Scan(&total, &paid)
	if err != nil {
		return nil, err
	}

	if paid+p.Amount > total {
		return nil, fmt.Errorf("%w: %.2f paid + %.2f > %.2f total", ErrOverPayment, paid, p.Amount, total)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, invoice_id, amount, method, reference_number)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.InvoiceID, p.Amount, p.Method, p.ReferenceNumber)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	newPaid := paid + p.Amount
	_, err = tx.ExecContext(ctx,
		`UPDATE invoices SET amount_paid=$1, status=$2 WHERE id=$3`,
		newPaid, DeriveStatus(newPaid, total), p.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("update invoice status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetInvoiceByID(ctx, p.InvoiceID.String())
}

func (r *postgresRepo) ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, amount, method, reference_number, created_at
		FROM payments WHERE invoice_id=$1 ORDER BY created_at ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []*Payment
	for rows.Next() {
		p := &Payment{}
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.ReferenceNumber, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *postgresRepo) RevenueByMonth(ctx context.Context, year int) ([]*MonthlyRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month, SUM(repair) AS repair, SUM(shop) AS shop FROM (
			SELECT EXTRACT(MONTH FROM created_at)::int AS month, amount AS repair, 0::numeric AS shop
			FROM payments WHERE EXTRACT(YEAR FROM created_at)=$1
			UNION ALL
			SELECT EXTRACT(MONTH FROM updated_at)::int, 0, total_amount
			FROM online_orders
			WHERE status IN ('SHIPPED','COMPLETED') AND EXTRACT(YEAR FROM updated_at)=$1
		) AS revenue
		GROUP BY month ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*MonthlyRevenue
	for rows.Next() {
		m := &MonthlyRevenue{Year: year}
		if err := rows.Scan(&m.Month, &m.RepairAmount, &m.ShopAmount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanInvoice(row *sql.Row) (*Invoice, error) {
	inv := &Invoice{}
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.JobOrderID, &inv.CustomerID,
		&inv.CustomerName, &inv.VehicleDesc, &inv.Plate, &inv.Subtotal, &inv.Discount,
		&inv.Tax, &inv.TotalAmount, &inv.Status, &inv.AmountPaid, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *postgresRepo) listLines(ctx context.Context, invoiceID string) ([]*InvoiceLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, part_id, description, quantity, unit_price, line_total
		FROM invoice_lines WHERE invoice_id=$1`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []*InvoiceLine
	for rows.Next() {
		l := &InvoiceLine{}
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.PartID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
