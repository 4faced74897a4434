package billing

import "context"

// Repository defines invoice and payment data access.
type Repository interface {
	// GetBillingSource reads the job order, its part lines, and the
	// customer/vehicle snapshot fields needed at issuance.
	GetBillingSource(ctx context.Context, jobOrderID string) (*BillingSource, error)

	// InsertInvoice claims the job order's invoice slot with a conditional
	// update (invoice_id IS NULL) and inserts the invoice with its lines in
	// one transaction; claimed=false means the order was already invoiced.
	InsertInvoice(ctx context.Context, inv *Invoice) (claimed bool, err error)

	GetInvoiceByID(ctx context.Context, id string) (*Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)
	ListInvoices(ctx context.Context, status string) ([]*Invoice, error)

	// AppendPayment appends the payment and rederives invoice status inside
	// one transaction holding a row lock on the invoice. Returns
	// ErrOverPayment when the running sum would exceed the total.
	AppendPayment(ctx context.Context, p *Payment) (*Invoice, error)

	ListPayments(ctx context.Context, invoiceID string) ([]*Payment, error)

	// RevenueByMonth aggregates settled payments and settled shop orders.
	RevenueByMonth(ctx context.Context, year int) ([]*MonthlyRevenue, error)
}
