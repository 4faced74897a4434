package wallet

import (
	"time"

	"github.com/google/uuid"
)

// PayoutMethod is the rail the money leaves on.
type PayoutMethod string

const (
	MethodBank    PayoutMethod = "BANK"
	MethodGCash   PayoutMethod = "GCASH"
	MethodPayMaya PayoutMethod = "PAYMAYA"
)

var validMethods = map[PayoutMethod]bool{
	MethodBank:    true,
	MethodGCash:   true,
	MethodPayMaya: true,
}

// Summary is the wallet snapshot. AvailableBalance is always
// TotalEarnings minus TotalWithdrawn.
type Summary struct {
	AvailableBalance float64 `json:"available_balance"`
	TotalEarnings    float64 `json:"total_earnings"`
	TotalWithdrawn   float64 `json:"total_withdrawn"`
}

// Payout is one append-only withdrawal record. Payouts always sweep
// the full available balance.
type Payout struct {
	ID          uuid.UUID    `json:"id"`
	Amount      float64      `json:"amount"`
	Method      PayoutMethod `json:"method"`
	Destination string       `json:"destination"`
	ActorID     uuid.UUID    `json:"actor_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PayoutRequest authorizes a withdrawal. The code is only checked when
// the actor has an authenticator enabled.
type PayoutRequest struct {
	UserID      string `json:"user_id"`
	PIN         string `json:"pin"`
	Code        string `json:"code,omitempty"`
	Method      string `json:"method"`
	Destination string `json:"destination"`
}
