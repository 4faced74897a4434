package inventory

import (
	"time"

	"github.com/google/uuid"
)

// StockAction indicates the direction of a manual stock adjustment.
type StockAction string

const (
	ActionAdd    StockAction = "ADD"
	ActionDeduct StockAction = "DEDUCT"
)

// Part is a stocked inventory item. Quantity is mutated only through
// stock adjustments and billing attachments, never by a generic update.
type Part struct {
	ID           uuid.UUID `json:"id"`
	PartNumber   string    `json:"part_number"`
	Name         string    `json:"name"`
	Quantity     int       `json:"quantity"`
	MinThreshold int       `json:"min_threshold"`
	BuyingPrice  float64   `json:"buying_price"`
	SellingPrice float64   `json:"selling_price"`
	IsPublic     bool      `json:"is_public"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowStock reports whether the part is at or below its reorder threshold.
func (p *Part) LowStock() bool { return p.Quantity <= p.MinThreshold }

// StockAdjustment is an audit row for every quantity change, including
// billing-driven deductions and shop reservations.
type StockAdjustment struct {
	ID        uuid.UUID `json:"id"`
	PartID    uuid.UUID `json:"part_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	Actor     string    `json:"actor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePartRequest is the payload for adding a part to the catalogue.
type CreatePartRequest struct {
	PartNumber   string  `json:"part_number"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	MinThreshold int     `json:"min_threshold"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	IsPublic     bool    `json:"is_public"`
}

// UpdatePartRequest updates descriptive and pricing fields. Quantity is
// deliberately absent; stock moves only through AdjustStock.
type UpdatePartRequest struct {
	Name         string  `json:"name"`
	MinThreshold int     `json:"min_threshold"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	IsPublic     bool    `json:"is_public"`
}

// AdjustStockRequest is the payload for a manual ADD/DEDUCT adjustment.
type AdjustStockRequest struct {
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
	Actor    string `json:"actor,omitempty"`
}
