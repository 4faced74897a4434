package billing

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	sources  map[string]*BillingSource
	invoices map[string]*Invoice
	payments map[string][]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sources:  make(map[string]*BillingSource),
		invoices: make(map[string]*Invoice),
		payments: make(map[string][]*Payment),
	}
}

func (f *fakeRepo) GetBillingSource(_ context.Context, jobOrderID string) (*BillingSource, error) {
	src, ok := f.sources[jobOrderID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *src
	return &cp, nil
}

func (f *fakeRepo) InsertInvoice(_ context.Context, inv *Invoice) (bool, error) {
	src := f.sources[inv.JobOrderID.String()]
	if src.InvoiceID != nil {
		return false, nil
	}
	id := inv.ID
	src.InvoiceID = &id
	cp := *inv
	f.invoices[inv.ID.String()] = &cp
	return true, nil
}

func (f *fakeRepo) GetInvoiceByID(_ context.Context, id string) (*Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) GetInvoiceByNumber(_ context.Context, number string) (*Invoice, error) {
	for id, inv := range f.invoices {
		if inv.InvoiceNumber == number {
			return f.GetInvoiceByID(context.Background(), id)
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) ListInvoices(_ context.Context, status string) ([]*Invoice, error) {
	var out []*Invoice
	for _, inv := range f.invoices {
		if status == "" || string(inv.Status) == status {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeRepo) AppendPayment(_ context.Context, p *Payment) (*Invoice, error) {
	inv, ok := f.invoices[p.InvoiceID.String()]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if inv.AmountPaid+p.Amount > inv.TotalAmount {
		return nil, ErrOverPayment
	}
	f.payments[inv.ID.String()] = append(f.payments[inv.ID.String()], p)
	inv.AmountPaid += p.Amount
	inv.Status = DeriveStatus(inv.AmountPaid, inv.TotalAmount)
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) ListPayments(_ context.Context, invoiceID string) ([]*Payment, error) {
	return f.payments[invoiceID], nil
}

func (f *fakeRepo) RevenueByMonth(_ context.Context, _ int) ([]*MonthlyRevenue, error) {
	return nil, nil
}

func seedSource(repo *fakeRepo, estimatedCost float64, lines ...*SourceLine) string {
	id := uuid.New()
	repo.sources[id.String()] = &BillingSource{
		JobOrderID:    id,
		JobNumber:     "JO-20260801-TEST",
		CustomerID:    uuid.New(),
		CustomerName:  "Juan dela Cruz",
		VehicleDesc:   "Toyota Vios",
		Plate:         "ABC-1234",
		EstimatedCost: estimatedCost,
		Lines:         lines,
	}
	return id.String()
}

func TestIssueInvoiceFreezesTotals(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, PolicyReject)
	jobID := seedSource(repo, 500, &SourceLine{
		PartID: uuid.New(), PartName: "Oil Filter", Quantity: 3, UnitPrice: 100,
	})

	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{
		JobOrderID: jobID, Discount: 50, Tax: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 800.0, inv.Subtotal)
	assert.Equal(t, 780.0, inv.TotalAmount)
	assert.Equal(t, StatusUnpaid, inv.Status)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, 300.0, inv.Lines[0].LineTotal)
	assert.Equal(t, "Juan dela Cruz", inv.CustomerName)
	assert.Regexp(t, `^INV-\d{8}-[0-9A-F]{4}$`, inv.InvoiceNumber)
}

func TestIssueInvoiceIdempotency(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, PolicyReject)
	jobID := seedSource(repo, 500)

	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{JobOrderID: jobID})
	require.NoError(t, err)

	_, err = svc.IssueInvoice(context.Background(), IssueInvoiceRequest{JobOrderID: jobID})
	require.ErrorIs(t, err, ErrAlreadyInvoiced)
	assert.Len(t, repo.invoices, 1)
}

func TestIssueInvoiceUnknownJobOrder(t *testing.T) {
	svc := NewService(newFakeRepo(), PolicyReject)
	_, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{JobOrderID: uuid.NewString()})
	require.ErrorIs(t, err, ErrJobOrderNotFound)
}

func TestNegativeTotalPolicy(t *testing.T) {
	t.Run("reject", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, PolicyReject)
		jobID := seedSource(repo, 100)

		_, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{
			JobOrderID: jobID, Discount: 200,
		})
		require.ErrorIs(t, err, ErrNegativeTotal)
		assert.Empty(t, repo.invoices)
	})

	t.Run("clamp", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, PolicyClamp)
		jobID := seedSource(repo, 100)

		inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{
			JobOrderID: jobID, Discount: 200,
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, inv.TotalAmount)
		assert.Equal(t, StatusPaid, inv.Status)
	})
}

func TestRecordPaymentDerivesStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, PolicyReject)
	jobID := seedSource(repo, 500, &SourceLine{
		PartID: uuid.New(), PartName: "Oil Filter", Quantity: 3, UnitPrice: 100,
	})
	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{
		JobOrderID: jobID, Discount: 50, Tax: 30,
	})
	require.NoError(t, err)

	got, err := svc.RecordPayment(context.Background(), inv.ID.String(), RecordPaymentRequest{
		Amount: 300, Method: "GCASH", ReferenceNumber: "REF-1",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPartiallyPaid, got.Status)
	assert.Equal(t, 300.0, got.AmountPaid)

	got, err = svc.RecordPayment(context.Background(), inv.ID.String(), RecordPaymentRequest{
		Amount: 480, Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, 780.0, got.AmountPaid)
}

func TestRecordPaymentValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, PolicyReject)
	jobID := seedSource(repo, 500)
	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{JobOrderID: jobID})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     RecordPaymentRequest
		wantErr error
	}{
		{"zero amount", RecordPaymentRequest{Amount: 0, Method: "CASH"}, ErrValidation},
		{"negative amount", RecordPaymentRequest{Amount: -10, Method: "CASH"}, ErrValidation},
		{"unknown method", RecordPaymentRequest{Amount: 10, Method: "BARTER"}, ErrValidation},
		{"over payment", RecordPaymentRequest{Amount: 501, Method: "CASH"}, ErrOverPayment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPayment(context.Background(), inv.ID.String(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = svc.RecordPayment(context.Background(), uuid.NewString(), RecordPaymentRequest{
		Amount: 10, Method: "CASH",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentSumNeverExceedsTotal(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, PolicyReject)
	jobID := seedSource(repo, 500)
	inv, err := svc.IssueInvoice(context.Background(), IssueInvoiceRequest{JobOrderID: jobID})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), inv.ID.String(), RecordPaymentRequest{
		Amount: 400, Method: "CASH",
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), inv.ID.String(), RecordPaymentRequest{
		Amount: 101, Method: "CASH",
	})
	require.ErrorIs(t, err, ErrOverPayment)

	got, err := svc.GetInvoice(context.Background(), inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 400.0, got.AmountPaid)
	assert.LessOrEqual(t, got.AmountPaid, got.TotalAmount)
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusUnpaid, DeriveStatus(0, 100))
	assert.Equal(t, StatusPartiallyPaid, DeriveStatus(50, 100))
	assert.Equal(t, StatusPaid, DeriveStatus(100, 100))
}
