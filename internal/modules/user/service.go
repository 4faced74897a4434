package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotFound means the user id or email is unknown.
	ErrNotFound = errors.New("user not found")
	// ErrValidation means the request payload is malformed.
	ErrValidation = errors.New("validation error")
	// ErrInvalidCode means the TOTP code did not verify.
	ErrInvalidCode = errors.New("invalid authentication code")
)

// Service defines user-related business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)

	// SetPIN stores a bcrypt hash of the payout PIN (4 to 6 digits).
	SetPIN(ctx context.Context, id string, req SetPINRequest) error

	// EnrollTOTP generates a fresh secret; it stays disabled until
	// ConfirmTOTP verifies the first code.
	EnrollTOTP(ctx context.Context, id string) (*TOTPEnrollment, error)
	ConfirmTOTP(ctx context.Context, id string, req ConfirmTOTPRequest) error
}

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

var validRoles = map[Role]bool{
	RoleOwner:     true,
	RoleMechanic:  true,
	RoleFrontDesk: true,
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	role := Role(strings.ToUpper(req.Role))
	if role == "" {
		role = RoleFrontDesk
	}
	if !validRoles[role] {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) SetPIN(ctx context.Context, id string, req SetPINRequest) error {
	if len(req.PIN) < 4 || len(req.PIN) > 6 {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", ErrValidation)
	}
	for _, c := range req.PIN {
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: pin must contain digits only", ErrValidation)
		}
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePINHash(ctx, id, string(hash))
}

func (s *service) EnrollTOTP(ctx context.Context, id string) (*TOTPEnrollment, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "AutoWorks PH",
		AccountName: u.Email,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTOTP(ctx, id, key.Secret(), false); err != nil {
		return nil, err
	}
	return &TOTPEnrollment{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *service) ConfirmTOTP(ctx context.Context, id string, req ConfirmTOTPRequest) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if u.TOTPSecret == "" {
		return fmt.Errorf("%w: no pending enrollment", ErrValidation)
	}
	if !totp.Validate(req.Code, u.TOTPSecret) {
		return ErrInvalidCode
	}
	return s.repo.UpdateTOTP(ctx, id, u.TOTPSecret, true)
}
