package shop

import "context"

// Repository defines online order data access.
type Repository interface {
	// GetPublicPart returns the display name, current price, and visibility
	// of a part offered in the public shop.
	GetPublicPart(ctx context.Context, partID string) (name string, price float64, isPublic bool, err error)

	// CreateOrder reserves stock for every item with conditional decrements
	// and inserts the order and items in one transaction; applied=false
	// means some item had insufficient stock (shortPartID names it).
	CreateOrder(ctx context.Context, o *OnlineOrder) (applied bool, shortPartID string, err error)

	GetByID(ctx context.Context, id string) (*OnlineOrder, error)
	GetByNumber(ctx context.Context, orderNumber string) (*OnlineOrder, error)
	List(ctx context.Context, includeArchived bool, status string) ([]*OnlineOrder, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetArchived(ctx context.Context, id string, archived bool) error
	UpdateTracking(ctx context.Context, id, trackingNumber, courier string) error

	// Cancel marks the order cancelled and restocks every item in one
	// transaction, storing the refund reference when present. The status
	// flip is conditional on PENDING/PROCESSING; applied=false means the
	// order already left a cancellable state and nothing was restocked.
	Cancel(ctx context.Context, id, refundReference string) (applied bool, err error)
}
