package user

import "context"

// Repository defines user data access.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePINHash(ctx context.Context, id, pinHash string) error
	UpdateTOTP(ctx context.Context, id, secret string, enabled bool) error
}
