package joborder

import "context"

// Repository defines job order data access.
type Repository interface {
	// Create persists the job order; when bookingID is non-empty the named
	// booking is marked COMPLETED in the same transaction, failing with
	// ErrInvalidTransition unless the booking is CONFIRMED.
	Create(ctx context.Context, j *JobOrder, bookingID string) error

	// GetByID retrieves an order with its part lines and resolved display names.
	GetByID(ctx context.Context, id string) (*JobOrder, error)

	// GetByNumber retrieves an order by its human-readable job number.
	GetByNumber(ctx context.Context, jobNumber string) (*JobOrder, error)

	// Track retrieves an order only when job number and vehicle plate jointly match.
	Track(ctx context.Context, jobNumber, plate string) (*JobOrder, error)

	// List returns orders, hiding archived ones unless asked, optionally by status.
	List(ctx context.Context, includeArchived bool, status string) ([]*JobOrder, error)

	Update(ctx context.Context, j *JobOrder) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetArchived(ctx context.Context, id string, archived bool) error

	// GetPartPricing returns the part's display name and current selling price.
	GetPartPricing(ctx context.Context, partID string) (name string, price float64, err error)

	// AttachPart deducts stock and inserts the line in one transaction with a
	// conditional decrement; applied=false means insufficient stock. The
	// transaction re-checks invoice_id IS NULL and fails with
	// ErrAlreadyInvoiced when issuance won the race.
	AttachPart(ctx context.Context, line *JobOrderPart) (applied bool, err error)

	// DetachPart removes the line and returns its quantity to stock in one
	// transaction.
	DetachPart(ctx context.Context, jobOrderID, lineID string) error

	GetLine(ctx context.Context, jobOrderID, lineID string) (*JobOrderPart, error)
}
