package billing

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is derived from the payment ledger after every payment.
type InvoiceStatus string

const (
	StatusUnpaid        InvoiceStatus = "UNPAID"
	StatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	StatusPaid          InvoiceStatus = "PAID"
)

// PaymentMethod represents how a payment was settled.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "CASH"
	MethodBank    PaymentMethod = "BANK"
	MethodGCash   PaymentMethod = "GCASH"
	MethodPayMaya PaymentMethod = "PAYMAYA"
)

// NegativeTotalPolicy decides what happens when subtotal - discount + tax
// comes out below zero at issuance.
type NegativeTotalPolicy string

const (
	PolicyReject NegativeTotalPolicy = "reject"
	PolicyClamp  NegativeTotalPolicy = "clamp"
)

// Invoice is an immutable billed snapshot of a job order. Monetary fields
// and lines never change after issuance; only Status and AmountPaid do.
type Invoice struct {
	ID            uuid.UUID      `json:"id"`
	InvoiceNumber string         `json:"invoice_number"`
	JobOrderID    uuid.UUID      `json:"job_order_id"`
	CustomerID    uuid.UUID      `json:"customer_id"`
	CustomerName  string         `json:"customer_name"`
	VehicleDesc   string         `json:"vehicle_desc"`
	Plate         string         `json:"plate"`
	Subtotal      float64        `json:"subtotal"`
	Discount      float64        `json:"discount"`
	Tax           float64        `json:"tax"`
	TotalAmount   float64        `json:"total_amount"`
	Status        InvoiceStatus  `json:"status"`
	AmountPaid    float64        `json:"amount_paid"`
	Lines         []*InvoiceLine `json:"lines,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// InvoiceLine is a frozen copy of a job order part line.
type InvoiceLine struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	PartID      uuid.UUID `json:"part_id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	LineTotal   float64   `json:"line_total"`
}

// Payment is an append-only ledger entry against an invoice.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	InvoiceID       uuid.UUID     `json:"invoice_id"`
	Amount          float64       `json:"amount"`
	Method          PaymentMethod `json:"method"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// BillingSource is the job order snapshot read at issuance time.
type BillingSource struct {
	JobOrderID    uuid.UUID
	JobNumber     string
	CustomerID    uuid.UUID
	CustomerName  string
	VehicleDesc   string
	Plate         string
	EstimatedCost float64
	InvoiceID     *uuid.UUID
	Lines         []*SourceLine
}

// SourceLine is a job order part line as read at issuance time.
type SourceLine struct {
	PartID    uuid.UUID
	PartName  string
	Quantity  int
	UnitPrice float64
}

// Subtotal is the draft amount: labor estimate plus part lines.
func (b *BillingSource) Subtotal() float64 {
	total := b.EstimatedCost
	for _, l := range b.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// MonthlyRevenue is a reporting row: settled amounts grouped by month.
type MonthlyRevenue struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	RepairAmount float64 `json:"repair_amount"`
	ShopAmount   float64 `json:"shop_amount"`
}

// IssueInvoiceRequest is the payload for freezing a job order into an invoice.
type IssueInvoiceRequest struct {
	JobOrderID string  `json:"job_order_id"`
	Discount   float64 `json:"discount"`
	Tax        float64 `json:"tax"`
}

// RecordPaymentRequest is the payload for appending a payment.
type RecordPaymentRequest struct {
	Amount          float64 `json:"amount"`
	Method          string  `json:"method"`
	ReferenceNumber string  `json:"reference_number,omitempty"`
}
