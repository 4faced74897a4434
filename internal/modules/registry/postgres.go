package registry

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL registry repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateCustomer(ctx context.Context, c *Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, email, address)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Phone, c.Email, c.Address)
	return err
}

func (r *postgresRepo) GetCustomerByID(ctx context.Context, id string) (*Customer, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	c := &Customer{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, address, created_at, updated_at
		FROM customers WHERE id=$1`, uid).Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *postgresRepo) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, email, address, created_at, updated_at
		FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var customers []*Customer
	for rows.Next() {
		c := &Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *postgresRepo) UpdateCustomer(ctx context.Context, c *Customer) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE customers SET name=$1, phone=$2, email=$3, address=$4, updated_at=$5
		WHERE id=$6`,
		c.Name, c.Phone, c.Email, c.Address, time.Now(), c.ID)
	return err
}

func (r *postgresRepo) CreateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, customer_id, make, model, year, plate, vin)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.CustomerID, v.Make, v.Model, v.Year, v.Plate, v.VIN)
	return err
}

func (r *postgresRepo) GetVehicleByID(ctx context.Context, id string) (*Vehicle, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, sql.ErrNoRows
	}
	v := &Vehicle{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, make, model, year, plate, vin, created_at, updated_at
		FROM vehicles WHERE id=$1`, uid).Scan(
		&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *postgresRepo) ListVehiclesByCustomer(ctx context.Context, customerID string) ([]*Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, make, model, year, plate, vin, created_at, updated_at
		FROM vehicles WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vehicles []*Vehicle
	for rows.Next() {
		v := &Vehicle{}
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *postgresRepo) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE vehicles SET customer_id=$1, make=$2, model=$3, year=$4, plate=$5, vin=$6, updated_at=$7
		WHERE id=$8`,
		v.CustomerID, v.Make, v.Model, v.Year, v.Plate, v.VIN, time.Now(), v.ID)
	return err
}
