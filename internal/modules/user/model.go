package user

import (
	"time"

	"github.com/google/uuid"
)

// Role controls what a staff account may do.
type Role string

const (
	RoleOwner     Role = "OWNER"
	RoleMechanic  Role = "MECHANIC"
	RoleFrontDesk Role = "FRONT_DESK"
)

// User represents a staff account. Secrets never serialize.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Role         Role      `json:"role"`
	PINHash      string    `json:"-"`
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating a staff account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// SetPINRequest carries the payout PIN to store for an account.
type SetPINRequest struct {
	PIN string `json:"pin"`
}

// TOTPEnrollment is returned once at enrollment; the secret is only
// shown here and never again.
type TOTPEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// ConfirmTOTPRequest carries the first code proving the authenticator
// was set up correctly.
type ConfirmTOTPRequest struct {
	Code string `json:"code"`
}
