package registry

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	customers map[string]*Customer
	vehicles  map[string]*Vehicle
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers: map[string]*Customer{},
		vehicles:  map[string]*Vehicle{},
	}
}

func (f *fakeRepo) CreateCustomer(_ context.Context, c *Customer) error {
	f.customers[c.ID.String()] = c
	return nil
}

func (f *fakeRepo) GetCustomerByID(_ context.Context, id string) (*Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeRepo) ListCustomers(_ context.Context) ([]*Customer, error) {
	var out []*Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) UpdateCustomer(_ context.Context, c *Customer) error {
	f.customers[c.ID.String()] = c
	return nil
}

func (f *fakeRepo) CreateVehicle(_ context.Context, v *Vehicle) error {
	f.vehicles[v.ID.String()] = v
	return nil
}

func (f *fakeRepo) GetVehicleByID(_ context.Context, id string) (*Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (f *fakeRepo) ListVehiclesByCustomer(_ context.Context, customerID string) ([]*Vehicle, error) {
	var out []*Vehicle
	for _, v := range f.vehicles {
		if v.CustomerID.String() == customerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateVehicle(_ context.Context, v *Vehicle) error {
	f.vehicles[v.ID.String()] = v
	return nil
}

func seedCustomer(t *testing.T, svc Service) *Customer {
	t.Helper()
	c, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Ana Reyes",
		Phone: "09171234567",
	})
	require.NoError(t, err)
	return c
}

func seedVehicle(t *testing.T, svc Service, customerID string) *Vehicle {
	t.Helper()
	v, err := svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		CustomerID: customerID,
		Make:       "Toyota",
		Model:      "Vios",
		Year:       2018,
		Plate:      "ABC-1234",
	})
	require.NoError(t, err)
	return v
}

func TestCreateCustomerValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetCustomerUnknownID(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.GetCustomer(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCustomer(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	c := seedCustomer(t, svc)
	ctx := context.Background()

	_, err := svc.UpdateCustomer(ctx, c.ID.String(), UpdateCustomerRequest{})
	require.ErrorIs(t, err, ErrValidation)

	got, err := svc.UpdateCustomer(ctx, c.ID.String(), UpdateCustomerRequest{
		Name:  "Ana Reyes-Santos",
		Phone: "09179876543",
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Ana Reyes-Santos", got.Name)
	assert.Equal(t, "09179876543", repo.customers[c.ID.String()].Phone)
}

func TestCreateVehicleRequiresExistingCustomer(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		CustomerID: uuid.NewString(),
		Make:       "Toyota",
		Model:      "Vios",
		Plate:      "ABC-1234",
	})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		CustomerID: "not-a-uuid",
		Plate:      "ABC-1234",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateVehicleRequiresPlate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	c := seedCustomer(t, svc)

	_, err := svc.CreateVehicle(context.Background(), CreateVehicleRequest{
		CustomerID: c.ID.String(),
		Make:       "Toyota",
		Model:      "Vios",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListCustomerVehicles(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := seedCustomer(t, svc)
	other := seedCustomer(t, svc)
	seedVehicle(t, svc, owner.ID.String())
	ctx := context.Background()

	mine, err := svc.ListCustomerVehicles(ctx, owner.ID.String())
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.ListCustomerVehicles(ctx, other.ID.String())
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestUpdateVehicleTransfer(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	from := seedCustomer(t, svc)
	to := seedCustomer(t, svc)
	v := seedVehicle(t, svc, from.ID.String())
	ctx := context.Background()

	// transfer to an unknown customer is rejected, ownership unchanged
	_, err := svc.UpdateVehicle(ctx, v.ID.String(), UpdateVehicleRequest{
		CustomerID: uuid.NewString(),
		Make:       "Toyota",
		Model:      "Vios",
		Plate:      "ABC-1234",
	})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, from.ID, repo.vehicles[v.ID.String()].CustomerID)

	got, err := svc.UpdateVehicle(ctx, v.ID.String(), UpdateVehicleRequest{
		CustomerID: to.ID.String(),
		Make:       "Toyota",
		Model:      "Vios",
		Plate:      "ABC-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, to.ID, got.CustomerID)
}

func TestUpdateVehicleKeepsOwnerWhenOmitted(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	owner := seedCustomer(t, svc)
	v := seedVehicle(t, svc, owner.ID.String())

	got, err := svc.UpdateVehicle(context.Background(), v.ID.String(), UpdateVehicleRequest{
		Make:  "Toyota",
		Model: "Vios",
		Plate: "XYZ-9876",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.CustomerID)
	assert.Equal(t, "XYZ-9876", got.Plate)
}
