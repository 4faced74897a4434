package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the customer or vehicle id is unknown.
	ErrNotFound = errors.New("record not found")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines customer and vehicle registry business logic.
type Service interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error)

	CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
	ListCustomerVehicles(ctx context.Context, customerID string) ([]*Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (*Vehicle, error)
}

type service struct {
	repo Repository
}

// NewService creates a new registry service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c := &Customer{
		ID:      uuid.New(),
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	c, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *service) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c.Name = req.Name
	c.Phone = req.Phone
	c.Email = req.Email
	c.Address = req.Address
	if err := s.repo.UpdateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error) {
	if req.Plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrValidation)
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
	}
	if _, err := s.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	v := &Vehicle{
		ID:         uuid.New(),
		CustomerID: customerID,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		Plate:      req.Plate,
		VIN:        req.VIN,
	}
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	v, err := s.repo.GetVehicleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
		}
		return nil, err
	}
	return v, nil
}

func (s *service) ListCustomerVehicles(ctx context.Context, customerID string) ([]*Vehicle, error) {
	return s.repo.ListVehiclesByCustomer(ctx, customerID)
}

func (s *service) UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (*Vehicle, error) {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Plate == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrValidation)
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
		}
		if _, err := s.GetCustomer(ctx, req.CustomerID); err != nil {
			return nil, err
		}
		v.CustomerID = customerID
	}
	v.Make = req.Make
	v.Model = req.Model
	v.Year = req.Year
	v.Plate = req.Plate
	v.VIN = req.VIN
	if err := s.repo.UpdateVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}
