package booking

import "context"

// Repository defines booking data access.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, status string) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) error

	// PurgeFinished deletes CANCELLED and COMPLETED bookings and
	// returns how many rows went away.
	PurgeFinished(ctx context.Context) (int64, error)
}
