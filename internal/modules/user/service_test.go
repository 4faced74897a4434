package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo { return &fakeRepo{users: map[string]*User{}} }

func (f *fakeRepo) CreateUser(_ context.Context, u *User) error {
	f.users[u.ID.String()] = u
	return nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) UpdatePINHash(_ context.Context, id, pinHash string) error {
	f.users[id].PINHash = pinHash
	return nil
}

func (f *fakeRepo) UpdateTOTP(_ context.Context, id, secret string, enabled bool) error {
	f.users[id].TOTPSecret = secret
	f.users[id].TOTPEnabled = enabled
	return nil
}

func registerTestUser(t *testing.T, svc Service) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Owner@AutoWorks.ph",
		Password: "hunter22",
		Role:     "owner",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterNormalizesEmailAndRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	u := registerTestUser(t, svc)
	assert.Equal(t, "owner@autoworks.ph", u.Email)
	assert.Equal(t, RoleOwner, u.Role)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter22")))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email: "a@b.c", Password: "x", Role: "WIZARD",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetPINRules(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	u := registerTestUser(t, svc)
	ctx := context.Background()

	for _, bad := range []string{"12", "1234567", "12a4", ""} {
		err := svc.SetPIN(ctx, u.ID.String(), SetPINRequest{PIN: bad})
		require.ErrorIs(t, err, ErrValidation, "pin %q", bad)
	}

	require.NoError(t, svc.SetPIN(ctx, u.ID.String(), SetPINRequest{PIN: "4321"}))
	stored := repo.users[u.ID.String()]
	require.NotEmpty(t, stored.PINHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PINHash), []byte("4321")))
}

func TestTOTPEnrollAndConfirm(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	u := registerTestUser(t, svc)
	ctx := context.Background()

	// confirming with nothing enrolled is rejected
	err := svc.ConfirmTOTP(ctx, u.ID.String(), ConfirmTOTPRequest{Code: "123456"})
	require.ErrorIs(t, err, ErrValidation)

	enrollment, err := svc.EnrollTOTP(ctx, u.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, enrollment.Secret)
	assert.Contains(t, enrollment.OTPAuthURL, "otpauth://")

	// enrollment alone must not enable the factor
	assert.False(t, repo.users[u.ID.String()].TOTPEnabled)

	err = svc.ConfirmTOTP(ctx, u.ID.String(), ConfirmTOTPRequest{Code: "000000"})
	require.ErrorIs(t, err, ErrInvalidCode)
	assert.False(t, repo.users[u.ID.String()].TOTPEnabled)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmTOTP(ctx, u.ID.String(), ConfirmTOTPRequest{Code: code}))
	assert.True(t, repo.users[u.ID.String()].TOTPEnabled)
}
