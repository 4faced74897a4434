package wallet

import "context"

// Repository defines wallet data access.
type Repository interface {
	// Summary recomputes earnings from settled revenue and reads the
	// running withdrawal total.
	Summary(ctx context.Context) (*Summary, error)

	// ExecutePayout locks the wallet row, recomputes the available
	// balance, and sweeps it into p.Amount. amount=0 with a nil error
	// means nothing was available and no payout row was written.
	ExecutePayout(ctx context.Context, p *Payout) (amount float64, err error)

	ListPayouts(ctx context.Context) ([]*Payout, error)
}
