package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autoworksph/garage-backend/internal/platform/logger"
)

var (
	// ErrNotFound means the booking id is unknown.
	ErrNotFound = errors.New("booking not found")
	// ErrInvalidTransition means the status change is not permitted.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines booking business logic.
type Service interface {
	Create(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	Get(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, status string) ([]*Booking, error)

	Confirm(ctx context.Context, id string) (*Booking, error)

	// Cancel only applies to PENDING bookings; a confirmed slot is
	// released by completing it through a job order instead.
	Cancel(ctx context.Context, id string) (*Booking, error)

	// Purge deletes finished bookings. The request must carry
	// confirm=true or nothing is touched.
	Purge(ctx context.Context, req PurgeRequest) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new booking service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	if req.CustomerName == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: customer_name and phone are required", ErrValidation)
	}
	if req.VehicleInfo == "" || req.ServiceType == "" {
		return nil, fmt.Errorf("%w: vehicle_info and service_type are required", ErrValidation)
	}
	preferred, err := time.Parse(time.RFC3339, req.PreferredDate)
	if err != nil {
		return nil, fmt.Errorf("%w: preferred_date must be RFC3339", ErrValidation)
	}

	b := &Booking{
		ID:            uuid.New(),
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		Email:         req.Email,
		VehicleInfo:   req.VehicleInfo,
		ServiceType:   req.ServiceType,
		PreferredDate: preferred,
		Notes:         req.Notes,
		Status:        StatusPending,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context, status string) ([]*Booking, error) {
	return s.repo.List(ctx, status)
}

func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

func (s *service) Cancel(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *service) Purge(ctx context.Context, req PurgeRequest) (int64, error) {
	if !req.Confirm {
		return 0, fmt.Errorf("%w: purge requires confirm=true", ErrValidation)
	}
	n, err := s.repo.PurgeFinished(ctx)
	if err != nil {
		return 0, err
	}
	logger.L().Info("purged finished bookings", zap.Int64("deleted", n))
	return n, nil
}

func (s *service) transition(ctx context.Context, id string, next Status) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, next) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", ErrInvalidTransition, b.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	b.Status = next
	return b, nil
}
