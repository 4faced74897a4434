package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	bookings map[string]*Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[string]*Booking{}}
}

func (f *fakeRepo) Create(_ context.Context, b *Booking) error {
	f.bookings[b.ID.String()] = b
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return b, nil
}

func (f *fakeRepo) List(_ context.Context, status string) ([]*Booking, error) {
	var out []*Booking
	for _, b := range f.bookings {
		if status != "" && string(b.Status) != status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	f.bookings[id].Status = status
	return nil
}

func (f *fakeRepo) PurgeFinished(_ context.Context) (int64, error) {
	var n int64
	for id, b := range f.bookings {
		if b.Status.Terminal() {
			delete(f.bookings, id)
			n++
		}
	}
	return n, nil
}

func createTestBooking(t *testing.T, svc Service) *Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), CreateBookingRequest{
		CustomerName:  "Ana Reyes",
		Phone:         "09171234567",
		VehicleInfo:   "2018 Toyota Vios, ABC-1234",
		ServiceType:   "Preventive maintenance",
		PreferredDate: time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return b
}

func TestCreateBookingStartsPending(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	b := createTestBooking(t, svc)
	assert.Equal(t, StatusPending, b.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		CustomerName: "Ana Reyes",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CreateBookingRequest{
		CustomerName:  "Ana Reyes",
		Phone:         "09171234567",
		VehicleInfo:   "2018 Toyota Vios",
		ServiceType:   "Brake check",
		PreferredDate: "next tuesday",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestConfirmThenCancelRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	b := createTestBooking(t, svc)

	b, err := svc.Confirm(ctx, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)

	// cancellation is only allowed while still PENDING
	_, err = svc.Cancel(ctx, b.ID.String())
	require.ErrorIs(t, err, ErrInvalidTransition)

	// confirming twice is also invalid
	_, err = svc.Confirm(ctx, b.ID.String())
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelPending(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	b := createTestBooking(t, svc)
	b, err := svc.Cancel(context.Background(), b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestPurgeOnlyRemovesFinished(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	pending := createTestBooking(t, svc)
	confirmed := createTestBooking(t, svc)
	cancelled := createTestBooking(t, svc)
	done := createTestBooking(t, svc)

	_, err := svc.Confirm(ctx, confirmed.ID.String())
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, cancelled.ID.String())
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, done.ID.String())
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, done.ID.String(), StatusCompleted))

	// without confirm the purge is a no-op
	_, err = svc.Purge(ctx, PurgeRequest{})
	require.ErrorIs(t, err, ErrValidation)
	assert.Len(t, repo.bookings, 4)

	n, err := svc.Purge(ctx, PurgeRequest{Confirm: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = svc.Get(ctx, pending.ID.String())
	require.NoError(t, err)
	_, err = svc.Get(ctx, confirmed.ID.String())
	require.NoError(t, err)
	_, err = svc.Get(ctx, cancelled.ID.String())
	require.ErrorIs(t, err, ErrNotFound)
}
