package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autoworksph/garage-backend/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound means the invoice id or number is unknown.
	ErrNotFound = errors.New("invoice not found")
	// ErrJobOrderNotFound means the job order to bill is unknown.
	ErrJobOrderNotFound = errors.New("job order not found")
	// ErrAlreadyInvoiced means a second issuance was attempted.
	ErrAlreadyInvoiced = errors.New("job order already invoiced")
	// ErrNegativeTotal means discount exceeds subtotal + tax under the reject policy.
	ErrNegativeTotal = errors.New("invoice total would be negative")
	// ErrOverPayment means the payment would push the ledger past the total.
	ErrOverPayment = errors.New("payment exceeds invoice total")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
)

// Service defines invoice issuance and payment ledger business logic.
type Service interface {
	// IssueInvoice freezes the job order's billing draft into an immutable
	// invoice. One-shot: a second call for the same job order fails.
	IssueInvoice(ctx context.Context, req IssueInvoiceRequest) (*Invoice, error)

	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, status string) ([]*Invoice, error)

	// RecordPayment appends a payment and rederives the invoice status.
	// Payments are append-only; there is no edit or delete path.
	RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*Invoice, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error)

	RevenueByMonth(ctx context.Context, year int) ([]*MonthlyRevenue, error)
}

type service struct {
	repo   Repository
	policy NegativeTotalPolicy
}

// NewService creates a new billing service. policy decides how a negative
// total at issuance is handled.
func NewService(repo Repository, policy NegativeTotalPolicy) Service {
	if policy != PolicyClamp {
		policy = PolicyReject
	}
	return &service{repo: repo, policy: policy}
}

func (s *service) IssueInvoice(ctx context.Context, req IssueInvoiceRequest) (*Invoice, error) {
	if req.JobOrderID == "" {
		return nil, fmt.Errorf("%w: job_order_id is required", ErrValidation)
	}
	if req.Discount < 0 || req.Tax < 0 {
		return nil, fmt.Errorf("%w: discount and tax cannot be negative", ErrValidation)
	}

	src, err := s.repo.GetBillingSource(ctx, req.JobOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobOrderNotFound, req.JobOrderID)
		}
		return nil, err
	}
	if src.InvoiceID != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInvoiced, src.JobNumber)
	}

	subtotal := src.Subtotal()
	total := subtotal - req.Discount + req.Tax
	if total < 0 {
		if s.policy == PolicyReject {
			return nil, fmt.Errorf("%w: %.2f - %.2f + %.2f", ErrNegativeTotal, subtotal, req.Discount, req.Tax)
		}
		total = 0
	}

	status := StatusUnpaid
	if total == 0 {
		// a clamped or genuinely zero invoice has nothing left to collect
		status = StatusPaid
	}

	inv := &Invoice{
		ID:            uuid.New(),
		InvoiceNumber: generateInvoiceNumber(),
		JobOrderID:    src.JobOrderID,
		CustomerID:    src.CustomerID,
		CustomerName:  src.CustomerName,
		VehicleDesc:   src.VehicleDesc,
		Plate:         src.Plate,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		Tax:           req.Tax,
		TotalAmount:   total,
		Status:        status,
	}
	for _, l := range src.Lines {
		inv.Lines = append(inv.Lines, &InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			PartID:      l.PartID,
			Description: l.PartName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.UnitPrice * float64(l.Quantity),
		})
	}

	claimed, err := s.repo.InsertInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInvoiced, src.JobNumber)
	}

	logger.L().Info("invoice issued",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("job_number", src.JobNumber),
		zap.Float64("total", inv.TotalAmount))
	return inv, nil
}

func (s *service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return inv, nil
}

func (s *service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, number)
		}
		return nil, err
	}
	return inv, nil
}

func (s *service) ListInvoices(ctx context.Context, status string) ([]*Invoice, error) {
	if status != "" {
		switch InvoiceStatus(strings.ToUpper(status)) {
		case StatusUnpaid, StatusPartiallyPaid, StatusPaid:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
	}
	return s.repo.ListInvoices(ctx, strings.ToUpper(status))
}

func (s *service) RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*Invoice, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	method := PaymentMethod(strings.ToUpper(req.Method))
	switch method {
	case MethodCash, MethodBank, MethodGCash, MethodPayMaya:
	default:
		return nil, fmt.Errorf("%w: invalid method %q (allowed: CASH, BANK, GCASH, PAYMAYA)", ErrValidation, req.Method)
	}
	uid, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, invoiceID)
	}

	p := &Payment{
		ID:              uuid.New(),
		InvoiceID:       uid,
		Amount:          req.Amount,
		Method:          method,
		ReferenceNumber: req.ReferenceNumber,
	}
	inv, err := s.repo.AppendPayment(ctx, p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, invoiceID)
		}
		return nil, err
	}
	return inv, nil
}

func (s *service) ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error) {
	if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *service) RevenueByMonth(ctx context.Context, year int) ([]*MonthlyRevenue, error) {
	if year <= 0 {
		year = time.Now().Year()
	}
	return s.repo.RevenueByMonth(ctx, year)
}

// DeriveStatus maps a paid sum onto the invoice status.
func DeriveStatus(paid, total float64) InvoiceStatus {
	switch {
	case paid >= total && total > 0:
		return StatusPaid
	case paid > 0:
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// generateInvoiceNumber creates a human-readable invoice number: INV-YYYYMMDD-XXXX
func generateInvoiceNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("INV-%s-%s", date, suffix)
}
