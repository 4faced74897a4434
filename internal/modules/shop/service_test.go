package shop

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePart struct {
	name     string
	price    float64
	isPublic bool
	quantity int
}

type fakeRepo struct {
	parts  map[string]*fakePart
	orders map[string]*OnlineOrder

	// beforeCancel runs at the top of Cancel, standing in for a competing
	// request that commits between the caller's read and the status flip.
	beforeCancel func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		parts:  map[string]*fakePart{},
		orders: map[string]*OnlineOrder{},
	}
}

func (f *fakeRepo) GetPublicPart(_ context.Context, partID string) (string, float64, bool, error) {
	p, ok := f.parts[partID]
	if !ok {
		return "", 0, false, sql.ErrNoRows
	}
	return p.name, p.price, p.isPublic, nil
}

func (f *fakeRepo) CreateOrder(_ context.Context, o *OnlineOrder) (bool, string, error) {
	for _, item := range o.Items {
		p := f.parts[item.PartID.String()]
		if p.quantity < item.Quantity {
			return false, item.PartID.String(), nil
		}
	}
	for _, item := range o.Items {
		f.parts[item.PartID.String()].quantity -= item.Quantity
	}
	f.orders[o.ID.String()] = o
	return true, "", nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*OnlineOrder, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return o, nil
}

func (f *fakeRepo) GetByNumber(_ context.Context, orderNumber string) (*OnlineOrder, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) List(_ context.Context, includeArchived bool, status string) ([]*OnlineOrder, error) {
	var out []*OnlineOrder
	for _, o := range f.orders {
		if !includeArchived && o.IsArchived {
			continue
		}
		if status != "" && string(o.Status) != status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	f.orders[id].Status = status
	return nil
}

func (f *fakeRepo) SetArchived(_ context.Context, id string, archived bool) error {
	f.orders[id].IsArchived = archived
	return nil
}

func (f *fakeRepo) UpdateTracking(_ context.Context, id, trackingNumber, courier string) error {
	f.orders[id].TrackingNumber = trackingNumber
	f.orders[id].Courier = courier
	return nil
}

func (f *fakeRepo) Cancel(_ context.Context, id, refundReference string) (bool, error) {
	if f.beforeCancel != nil {
		f.beforeCancel()
	}
	o := f.orders[id]
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return false, nil
	}
	for _, item := range o.Items {
		f.parts[item.PartID.String()].quantity += item.Quantity
	}
	o.Status = StatusCancelled
	o.RefundReference = refundReference
	return true, nil
}

func seedPart(f *fakeRepo, name string, price float64, qty int, public bool) string {
	id := uuid.New().String()
	f.parts[id] = &fakePart{name: name, price: price, isPublic: public, quantity: qty}
	return id
}

func placeTestOrder(t *testing.T, svc Service, partID string, qty int, delivery string) *OnlineOrder {
	t.Helper()
	o, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:   "Ana Reyes",
		Phone:          "09171234567",
		Address:        "123 Mabini St, Quezon City",
		PaymentMethod:  "GCASH",
		DeliveryMethod: delivery,
		Items:          []CartItem{{PartID: partID, Quantity: qty}},
	})
	require.NoError(t, err)
	return o
}

func TestPlaceOrderFreezesPriceAndDeductsStock(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)

	o := placeTestOrder(t, svc, partID, 2, "DELIVERY")

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 3000.0, o.TotalAmount)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Brake Pad Set", o.Items[0].Name)
	assert.Equal(t, 1500.0, o.Items[0].UnitPrice)
	assert.Equal(t, 8, repo.parts[partID].quantity)

	// later price changes must not touch the captured line
	repo.parts[partID].price = 2000
	got, err := svc.Get(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got.Items[0].UnitPrice)
	assert.Equal(t, 3000.0, got.TotalAmount)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Oil Filter", 350, 1, true)
	svc := NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:   "Ana Reyes",
		Phone:          "09171234567",
		DeliveryMethod: "PICKUP",
		Items:          []CartItem{{PartID: partID, Quantity: 3}},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, repo.parts[partID].quantity)
}

func TestPlaceOrderRejectsHiddenPart(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Internal Gasket", 90, 50, false)
	svc := NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:   "Ana Reyes",
		Phone:          "09171234567",
		DeliveryMethod: "PICKUP",
		Items:          []CartItem{{PartID: partID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrPartNotFound)
}

func TestPlaceOrderRequiresAddressForDelivery(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Wiper Blade", 250, 5, true)
	svc := NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:   "Ana Reyes",
		Phone:          "09171234567",
		DeliveryMethod: "DELIVERY",
		Items:          []CartItem{{PartID: partID, Quantity: 1}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestConfirmPaymentThenTracking(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 1, "DELIVERY")

	// tracking before payment confirmation is rejected
	_, err := svc.UpdateTracking(ctx, o.ID.String(), UpdateTrackingRequest{
		TrackingNumber: "LBC123", Courier: "LBC",
	})
	require.ErrorIs(t, err, ErrInvalidTransition)

	o, err = svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, o.Status)

	// blank tracking fields are rejected
	_, err = svc.UpdateTracking(ctx, o.ID.String(), UpdateTrackingRequest{Courier: "LBC"})
	require.ErrorIs(t, err, ErrValidation)

	o, err = svc.UpdateTracking(ctx, o.ID.String(), UpdateTrackingRequest{
		TrackingNumber: "LBC123", Courier: "LBC",
	})
	require.NoError(t, err)
	assert.Equal(t, "LBC123", o.TrackingNumber)
	// populating tracking does not advance the status by itself
	assert.Equal(t, StatusProcessing, o.Status)

	o, err = svc.MarkShipped(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, o.Status)
	assert.True(t, o.Status.Settled())
}

func TestMarkShippedRequiresTracking(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 1, "DELIVERY")
	_, err := svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)

	_, err = svc.MarkShipped(ctx, o.ID.String())
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMarkCompletedPickupOnly(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Oil Filter", 350, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 1, "PICKUP")
	_, err := svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)

	o, err = svc.MarkCompleted(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)

	// terminal state rejects further transitions
	_, err = svc.Cancel(ctx, o.ID.String(), CancelRequest{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelPendingRestocks(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)

	o := placeTestOrder(t, svc, partID, 4, "PICKUP")
	assert.Equal(t, 6, repo.parts[partID].quantity)

	o, err := svc.Cancel(context.Background(), o.ID.String(), CancelRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, 10, repo.parts[partID].quantity)
}

func TestCancelPaidOrderRequiresRefundReference(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 2, "PICKUP")
	_, err := svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o.ID.String(), CancelRequest{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 8, repo.parts[partID].quantity)

	o, err = svc.Cancel(ctx, o.ID.String(), CancelRequest{RefundReference: "GC-REF-991"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "GC-REF-991", o.RefundReference)
	assert.Equal(t, 10, repo.parts[partID].quantity)
}

func TestCancelRejectedWhenConcurrentCancelWins(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 4, "PICKUP")
	_, err := svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 6, repo.parts[partID].quantity)

	// another cancel commits first; this request read PROCESSING but the
	// conditional flip must not restock a second time
	repo.beforeCancel = func() {
		stored := repo.orders[o.ID.String()]
		if stored.Status == StatusProcessing {
			for _, item := range stored.Items {
				repo.parts[item.PartID.String()].quantity += item.Quantity
			}
			stored.Status = StatusCancelled
		}
	}

	_, err = svc.Cancel(ctx, o.ID.String(), CancelRequest{RefundReference: "GC-REF-100"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 10, repo.parts[partID].quantity)
}

func TestCancelRejectedWhenShipmentWins(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Brake Pad Set", 1500, 10, true)
	svc := NewService(repo)
	ctx := context.Background()

	o := placeTestOrder(t, svc, partID, 2, "DELIVERY")
	_, err := svc.ConfirmPayment(ctx, o.ID.String())
	require.NoError(t, err)

	repo.beforeCancel = func() {
		repo.orders[o.ID.String()].Status = StatusShipped
	}

	_, err = svc.Cancel(ctx, o.ID.String(), CancelRequest{RefundReference: "GC-REF-101"})
	require.ErrorIs(t, err, ErrInvalidTransition)
	// shipped goods keep their reservation
	assert.Equal(t, 8, repo.parts[partID].quantity)
}

func TestTrackByNumber(t *testing.T) {
	repo := newFakeRepo()
	partID := seedPart(repo, "Wiper Blade", 250, 5, true)
	svc := NewService(repo)

	o := placeTestOrder(t, svc, partID, 1, "PICKUP")

	got, err := svc.TrackByNumber(context.Background(), o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.TrackByNumber(context.Background(), "OO-19990101-ZZZZ")
	require.True(t, errors.Is(err, ErrNotFound))
}
