package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL booking repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings
		  (id, customer_name, phone, email, vehicle_info, service_type, preferred_date, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.CustomerName, b.Phone, b.Email, b.VehicleInfo,
		b.ServiceType, b.PreferredDate, b.Notes, b.Status)
	return err
}

const bookingColumns = `id, customer_name, phone, COALESCE(email, ''), vehicle_info,
	service_type, preferred_date, COALESCE(notes, ''), status, created_at, updated_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	b := &Booking{}
	err = r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, parsedID).Scan(
		&b.ID, &b.CustomerName, &b.Phone, &b.Email, &b.VehicleInfo,
		&b.ServiceType, &b.PreferredDate, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY preferred_date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var bookings []*Booking
	for rows.Next() {
		b := &Booking{}
		if err := rows.Scan(
			&b.ID, &b.CustomerName, &b.Phone, &b.Email, &b.VehicleInfo,
			&b.ServiceType, &b.PreferredDate, &b.Notes, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) PurgeFinished(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bookings WHERE status IN ($1, $2)`,
		StatusCancelled, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("purge bookings: %w", err)
	}
	return res.RowsAffected()
}
