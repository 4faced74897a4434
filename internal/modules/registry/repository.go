package registry

import "context"

// Repository defines data access for customers and vehicles.
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomerByID(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error

	CreateVehicle(ctx context.Context, v *Vehicle) error
	GetVehicleByID(ctx context.Context, id string) (*Vehicle, error)
	ListVehiclesByCustomer(ctx context.Context, customerID string) ([]*Vehicle, error)
	UpdateVehicle(ctx context.Context, v *Vehicle) error
}
