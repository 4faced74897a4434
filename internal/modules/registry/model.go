package registry

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an identity record referenced by job orders and invoices.
// Customers are never hard-deleted; financial history points at them.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle belongs to exactly one customer at a time. Plate and VIN are
// soft-unique identifiers used for public tracking lookups.
type Vehicle struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year,omitempty"`
	Plate      string    `json:"plate"`
	VIN        string    `json:"vin,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// UpdateCustomerRequest is the payload for updating customer contact details.
type UpdateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// CreateVehicleRequest is the payload for registering a vehicle under a customer.
type CreateVehicleRequest struct {
	CustomerID string `json:"customer_id"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year,omitempty"`
	Plate      string `json:"plate"`
	VIN        string `json:"vin,omitempty"`
}

// UpdateVehicleRequest is the payload for correcting vehicle details or
// transferring the vehicle to another customer.
type UpdateVehicleRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Year       int    `json:"year,omitempty"`
	Plate      string `json:"plate"`
	VIN        string `json:"vin,omitempty"`
}
