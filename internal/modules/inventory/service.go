package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/autoworksph/garage-backend/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means the part id is unknown.
	ErrNotFound = errors.New("part not found")
	// ErrInsufficientStock means a deduction exceeds the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPartInUse means the part is referenced by job order or invoice lines.
	ErrPartInUse = errors.New("part is in use")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines inventory business logic.
type Service interface {
	CreatePart(ctx context.Context, req CreatePartRequest) (*Part, error)
	GetPart(ctx context.Context, id string) (*Part, error)
	ListParts(ctx context.Context) ([]*Part, error)
	ListPublicParts(ctx context.Context) ([]*Part, error)
	ListLowStock(ctx context.Context) ([]*Part, error)
	UpdatePart(ctx context.Context, id string, req UpdatePartRequest) (*Part, error)
	AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*Part, error)
	DeletePart(ctx context.Context, id string) error
	ListAdjustments(ctx context.Context, id string) ([]*StockAdjustment, error)
}

type service struct {
	repo Repository
}

// NewService creates a new inventory service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreatePart(ctx context.Context, req CreatePartRequest) (*Part, error) {
	if req.PartNumber == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: part_number and name are required", ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", ErrValidation)
	}
	p := &Part{
		ID:           uuid.New(),
		PartNumber:   req.PartNumber,
		Name:         req.Name,
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		IsPublic:     req.IsPublic,
	}
	if err := s.repo.CreatePart(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetPart(ctx context.Context, id string) (*Part, error) {
	p, err := s.repo.GetPartByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *service) ListParts(ctx context.Context) ([]*Part, error) {
	return s.repo.ListParts(ctx)
}

func (s *service) ListPublicParts(ctx context.Context) ([]*Part, error) {
	return s.repo.ListPublicParts(ctx)
}

func (s *service) ListLowStock(ctx context.Context) ([]*Part, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *service) UpdatePart(ctx context.Context, id string, req UpdatePartRequest) (*Part, error) {
	p, err := s.GetPart(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	p.Name = req.Name
	p.MinThreshold = req.MinThreshold
	p.BuyingPrice = req.BuyingPrice
	p.SellingPrice = req.SellingPrice
	p.IsPublic = req.IsPublic
	if err := s.repo.UpdatePart(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) AdjustStock(ctx context.Context, id string, req AdjustStockRequest) (*Part, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	}
	action := StockAction(strings.ToUpper(req.Action))
	var delta int
	switch action {
	case ActionAdd:
		delta = req.Quantity
	case ActionDeduct:
		delta = -req.Quantity
	default:
		return nil, fmt.Errorf("%w: invalid action %q (allowed: ADD, DEDUCT)", ErrValidation, req.Action)
	}

	if _, err := s.GetPart(ctx, id); err != nil {
		return nil, err
	}

	applied, err := s.repo.AdjustQuantity(ctx, id, delta, req.Reason, req.Actor)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: cannot deduct %d from part %s", ErrInsufficientStock, req.Quantity, id)
	}

	p, err := s.GetPart(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.LowStock() {
		logger.L().Warn("part at or below reorder threshold",
			zap.String("part_id", p.ID.String()),
			zap.String("part_number", p.PartNumber),
			zap.Int("quantity", p.Quantity),
			zap.Int("min_threshold", p.MinThreshold))
	}
	return p, nil
}

func (s *service) DeletePart(ctx context.Context, id string) error {
	if _, err := s.GetPart(ctx, id); err != nil {
		return err
	}
	refs, err := s.repo.CountReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("%w: %d billing lines reference part %s", ErrPartInUse, refs, id)
	}
	return s.repo.DeletePart(ctx, id)
}

func (s *service) ListAdjustments(ctx context.Context, id string) ([]*StockAdjustment, error) {
	if _, err := s.GetPart(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, id)
}
