package inventory

import "context"

// Repository defines part and stock-ledger data access.
type Repository interface {
	CreatePart(ctx context.Context, p *Part) error
	GetPartByID(ctx context.Context, id string) (*Part, error)
	ListParts(ctx context.Context) ([]*Part, error)
	ListPublicParts(ctx context.Context) ([]*Part, error)
	ListLowStock(ctx context.Context) ([]*Part, error)
	UpdatePart(ctx context.Context, p *Part) error

	// AdjustQuantity applies a signed delta and records an audit row in one
	// transaction. The update is conditional: a delta that would drive the
	// quantity negative applies nothing and returns applied=false.
	AdjustQuantity(ctx context.Context, partID string, delta int, reason, actor string) (applied bool, err error)

	// CountReferences returns how many job order lines and invoice lines
	// reference the part.
	CountReferences(ctx context.Context, partID string) (int, error)
	DeletePart(ctx context.Context, partID string) error

	ListAdjustments(ctx context.Context, partID string) ([]*StockAdjustment, error)
}
