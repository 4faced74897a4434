package joborder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the job order id or number is unknown.
	ErrNotFound = errors.New("job order not found")
	// ErrPartNotFound means the referenced part id is unknown.
	ErrPartNotFound = errors.New("part not found")
	// ErrInvalidTransition means the status change is not permitted.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrArchived means the order is archived and rejects mutation.
	ErrArchived = errors.New("job order is archived")
	// ErrAlreadyInvoiced means billing is frozen for this order.
	ErrAlreadyInvoiced = errors.New("job order already invoiced")
	// ErrInsufficientStock means the attach quantity exceeds stock on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines job order business logic.
type Service interface {
	Create(ctx context.Context, req CreateJobOrderRequest) (*JobOrder, error)
	Get(ctx context.Context, id string) (*JobOrder, error)
	GetByNumber(ctx context.Context, jobNumber string) (*JobOrder, error)

	// Track is the public lookup: job number and plate must jointly match.
	Track(ctx context.Context, jobNumber, plate string) (*JobOrder, error)

	List(ctx context.Context, includeArchived bool, status string) ([]*JobOrder, error)
	Update(ctx context.Context, id string, req UpdateJobOrderRequest) (*JobOrder, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*JobOrder, error)
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error

	// AttachPart deducts stock and appends a line with the selling price
	// captured at this instant. Rejected once the order is invoiced.
	AttachPart(ctx context.Context, id string, req AttachPartRequest) (*JobOrder, error)
	DetachPart(ctx context.Context, id, lineID string) (*JobOrder, error)

	// Subtotal is the billing draft amount: labor estimate + part lines.
	Subtotal(ctx context.Context, id string) (float64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new job order service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateJobOrderRequest) (*JobOrder, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid customer_id", ErrValidation)
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle_id", ErrValidation)
	}
	if req.Complaint == "" {
		return nil, fmt.Errorf("%w: complaint is required", ErrValidation)
	}
	if req.EstimatedCost < 0 {
		return nil, fmt.Errorf("%w: estimated_cost cannot be negative", ErrValidation)
	}

	priority := PriorityNormal
	switch strings.ToUpper(req.Priority) {
	case "", string(PriorityNormal):
	case string(PriorityUrgent):
		priority = PriorityUrgent
	default:
		return nil, fmt.Errorf("%w: invalid priority %q (allowed: NORMAL, URGENT)", ErrValidation, req.Priority)
	}

	j := &JobOrder{
		ID:            uuid.New(),
		JobNumber:     generateJobNumber(),
		CustomerID:    customerID,
		VehicleID:     vehicleID,
		Complaint:     req.Complaint,
		Notes:         req.Notes,
		EstimatedCost: req.EstimatedCost,
		Priority:      priority,
		Status:        StatusReceived,
	}
	if req.MechanicID != "" {
		mid, err := uuid.Parse(req.MechanicID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid mechanic_id", ErrValidation)
		}
		j.MechanicID = &mid
	}

	if err := s.repo.Create(ctx, j, req.BookingID); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) Get(ctx context.Context, id string) (*JobOrder, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return j, nil
}

func (s *service) GetByNumber(ctx context.Context, jobNumber string) (*JobOrder, error) {
	j, err := s.repo.GetByNumber(ctx, jobNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, jobNumber)
		}
		return nil, err
	}
	return j, nil
}

func (s *service) Track(ctx context.Context, jobNumber, plate string) (*JobOrder, error) {
	if jobNumber == "" || plate == "" {
		return nil, fmt.Errorf("%w: job number and plate are required", ErrValidation)
	}
	j, err := s.repo.Track(ctx, jobNumber, plate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// no hint about which of the two was wrong
			return nil, fmt.Errorf("%w: no job order matches that number and plate", ErrNotFound)
		}
		return nil, err
	}
	return j, nil
}

func (s *service) List(ctx context.Context, includeArchived bool, status string) ([]*JobOrder, error) {
	if status != "" && !validStatuses[Status(strings.ToUpper(status))] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.repo.List(ctx, includeArchived, strings.ToUpper(status))
}

func (s *service) Update(ctx context.Context, id string, req UpdateJobOrderRequest) (*JobOrder, error) {
	j, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Complaint == "" {
		return nil, fmt.Errorf("%w: complaint is required", ErrValidation)
	}
	if req.EstimatedCost < 0 {
		return nil, fmt.Errorf("%w: estimated_cost cannot be negative", ErrValidation)
	}
	// labor estimate is frozen once invoiced
	if j.Invoiced() && req.EstimatedCost != j.EstimatedCost {
		return nil, fmt.Errorf("%w: estimated_cost is locked", ErrAlreadyInvoiced)
	}

	if req.Priority != "" {
		switch Priority(strings.ToUpper(req.Priority)) {
		case PriorityNormal:
			j.Priority = PriorityNormal
		case PriorityUrgent:
			j.Priority = PriorityUrgent
		default:
			return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.Priority)
		}
	}
	if req.MechanicID != "" {
		mid, err := uuid.Parse(req.MechanicID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid mechanic_id", ErrValidation)
		}
		j.MechanicID = &mid
	}
	j.Complaint = req.Complaint
	j.Notes = req.Notes
	j.EstimatedCost = req.EstimatedCost

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*JobOrder, error) {
	j, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	next := Status(strings.ToUpper(req.Status))
	if !validStatuses[next] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, req.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	j.Status = next
	return j, nil
}

func (s *service) Archive(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, true)
}

func (s *service) Unarchive(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetArchived(ctx, id, false)
}

func (s *service) AttachPart(ctx context.Context, id string, req AttachPartRequest) (*JobOrder, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	partID, err := uuid.Parse(req.PartID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid part_id", ErrValidation)
	}

	j, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Invoiced() {
		return nil, fmt.Errorf("%w: billing is locked for %s", ErrAlreadyInvoiced, j.JobNumber)
	}

	name, price, err := s.repo.GetPartPricing(ctx, req.PartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrPartNotFound, req.PartID)
		}
		return nil, err
	}

	line := &JobOrderPart{
		ID:         uuid.New(),
		JobOrderID: j.ID,
		PartID:     partID,
		PartName:   name,
		Quantity:   req.Quantity,
		UnitPrice:  price,
	}
	applied, err := s.repo.AttachPart(ctx, line)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: cannot attach %d of part %s", ErrInsufficientStock, req.Quantity, req.PartID)
	}

	return s.Get(ctx, id)
}

func (s *service) DetachPart(ctx context.Context, id, lineID string) (*JobOrder, error) {
	j, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Invoiced() {
		return nil, fmt.Errorf("%w: billing is locked for %s", ErrAlreadyInvoiced, j.JobNumber)
	}
	if _, err := s.repo.GetLine(ctx, id, lineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: line %s", ErrNotFound, lineID)
		}
		return nil, err
	}
	if err := s.repo.DetachPart(ctx, id, lineID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Subtotal(ctx context.Context, id string) (float64, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return j.Subtotal(), nil
}

// mutable fetches the order and rejects mutation on archived records.
func (s *service) mutable(ctx context.Context, id string) (*JobOrder, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.IsArchived {
		return nil, fmt.Errorf("%w: %s", ErrArchived, j.JobNumber)
	}
	return j, nil
}

// generateJobNumber creates a human-readable job number: JO-YYYYMMDD-XXXX
func generateJobNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("JO-%s-%s", date, suffix)
}
