package shop

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
	// ErrNotFound means the order id or number is unknown.
	ErrNotFound = errors.New("online order not found")
	// ErrPartNotFound means an item references an unknown or non-public part.
	ErrPartNotFound = errors.New("part not available in shop")
	// ErrInvalidTransition means the status change is not permitted.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInsufficientStock means an item quantity exceeds stock on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines online order business logic.
type Service interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OnlineOrder, error)
	Get(ctx context.Context, id string) (*OnlineOrder, error)

	// TrackByNumber is the public lookup by order number.
	TrackByNumber(ctx context.Context, orderNumber string) (*OnlineOrder, error)

	List(ctx context.Context, includeArchived bool, status string) ([]*OnlineOrder, error)

	// ConfirmPayment moves PENDING to PROCESSING.
	ConfirmPayment(ctx context.Context, id string) (*OnlineOrder, error)

	// UpdateTracking populates courier fields; PROCESSING + DELIVERY only.
	UpdateTracking(ctx context.Context, id string, req UpdateTrackingRequest) (*OnlineOrder, error)

	// MarkShipped closes a delivery order; tracking must be populated.
	MarkShipped(ctx context.Context, id string) (*OnlineOrder, error)

	// MarkCompleted closes a pickup order in PROCESSING.
	MarkCompleted(ctx context.Context, id string) (*OnlineOrder, error)

	// Cancel cancels from PENDING freely, or from PROCESSING with a refund
	// reference as the compensating record. Stock is returned either way.
	Cancel(ctx context.Context, id string, req CancelRequest) (*OnlineOrder, error)

	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

// NewService creates a new shop service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OnlineOrder, error) {
	if req.CustomerName == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: customer_name and phone are required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	delivery := DeliveryMethod(strings.ToUpper(req.DeliveryMethod))
	switch delivery {
	case DeliveryPickup:
	case DeliveryCourier:
		if req.Address == "" {
			return nil, fmt.Errorf("%w: address is required for delivery", ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: invalid delivery_method %q (allowed: PICKUP, DELIVERY)", ErrValidation, req.DeliveryMethod)
	}

	o := &OnlineOrder{
		ID:             uuid.New(),
		OrderNumber:    generateOrderNumber(),
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		PaymentMethod:  strings.ToUpper(req.PaymentMethod),
		DeliveryMethod: delivery,
		Status:         StatusPending,
	}

	var total float64
	for _, ci := range req.Items {
		if ci.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be > 0 for part %s", ErrValidation, ci.PartID)
		}
		partID, err := uuid.Parse(ci.PartID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid part_id %q", ErrValidation, ci.PartID)
		}
		name, price, isPublic, err := s.repo.GetPublicPart(ctx, ci.PartID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrPartNotFound, ci.PartID)
			}
			return nil, err
		}
		if !isPublic {
			return nil, fmt.Errorf("%w: %s", ErrPartNotFound, ci.PartID)
		}

		lineTotal := price * float64(ci.Quantity)
		total += lineTotal
		o.Items = append(o.Items, &OnlineOrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			PartID:    partID,
			Name:      name,
			Quantity:  ci.Quantity,
			UnitPrice: price,
			LineTotal: lineTotal,
		})
	}
	o.TotalAmount = total

	applied, shortPartID, err := s.repo.CreateOrder(ctx, o)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: part %s", ErrInsufficientStock, shortPartID)
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, id string) (*OnlineOrder, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return o, nil
}

func (s *service) TrackByNumber(ctx context.Context, orderNumber string) (*OnlineOrder, error) {
	o, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, orderNumber)
		}
		return nil, err
	}
	return o, nil
}

func (s *service) List(ctx context.Context, includeArchived bool, status string) ([]*OnlineOrder, error) {
	return s.repo.List(ctx, includeArchived, strings.ToUpper(status))
}

func (s *service) ConfirmPayment(ctx context.Context, id string) (*OnlineOrder, error) {
	return s.transition(ctx, id, StatusProcessing)
}

func (s *service) UpdateTracking(ctx context.Context, id string, req UpdateTrackingRequest) (*OnlineOrder, error) {
	if req.TrackingNumber == "" || req.Courier == "" {
		return nil, fmt.Errorf("%w: tracking_number and courier are required", ErrValidation)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusProcessing {
		return nil, fmt.Errorf("%w: tracking can only be set in PROCESSING (current: %s)", ErrInvalidTransition, o.Status)
	}
	if o.DeliveryMethod != DeliveryCourier {
		return nil, fmt.Errorf("%w: tracking applies to delivery orders only", ErrInvalidTransition)
	}
	if err := s.repo.UpdateTracking(ctx, id, req.TrackingNumber, req.Courier); err != nil {
		return nil, err
	}
	o.TrackingNumber = req.TrackingNumber
	o.Courier = req.Courier
	return o, nil
}

func (s *service) MarkShipped(ctx context.Context, id string) (*OnlineOrder, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.DeliveryMethod != DeliveryCourier {
		return nil, fmt.Errorf("%w: only delivery orders ship", ErrInvalidTransition)
	}
	if o.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: tracking must be set before shipping", ErrInvalidTransition)
	}
	return s.transitionFrom(ctx, o, StatusShipped)
}

func (s *service) MarkCompleted(ctx context.Context, id string) (*OnlineOrder, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.DeliveryMethod != DeliveryPickup {
		return nil, fmt.Errorf("%w: only pickup orders complete at the counter", ErrInvalidTransition)
	}
	return s.transitionFrom(ctx, o, StatusCompleted)
}

func (s *service) Cancel(ctx context.Context, id string, req CancelRequest) (*OnlineOrder, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, o.Status)
	}
	// post-payment cancellation needs a compensating refund record
	if o.Status == StatusProcessing && req.RefundReference == "" {
		return nil, fmt.Errorf("%w: refund_reference is required to cancel a paid order", ErrValidation)
	}
	applied, err := s.repo.Cancel(ctx, id, req.RefundReference)
	if err != nil {
		return nil, err
	}
	if !applied {
		// a concurrent cancel or shipment moved the order first
		return nil, fmt.Errorf("%w: order %s is no longer cancellable", ErrInvalidTransition, o.OrderNumber)
	}
	return s.Get(ctx, id)
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

func (s *service) transition(ctx context.Context, id string, next Status) (*OnlineOrder, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transitionFrom(ctx, o, next)
}

func (s *service) transitionFrom(ctx context.Context, o *OnlineOrder, next Status) (*OnlineOrder, error) {
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrInvalidTransition, o.Status, next)
	}
	if err := s.repo.UpdateStatus(ctx, o.ID.String(), next); err != nil {
		return nil, err
	}
	o.Status = next
	return o, nil
}

// generateOrderNumber creates a human-readable order number: OO-YYYYMMDD-XXXX
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("OO-%s-%s", date, suffix)
}
