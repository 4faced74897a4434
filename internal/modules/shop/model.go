package shop

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an online order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// validTransitions defines the allowed status state machine. SHIPPED is the
// delivery terminal, COMPLETED the pickup terminal.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCompleted, StatusCancelled},
	StatusShipped:    {},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition returns true if the status change is allowed.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// Settled reports whether the order counts toward wallet earnings.
func (s Status) Settled() bool { return s == StatusShipped || s == StatusCompleted }

// DeliveryMethod indicates how the buyer receives the order.
type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "PICKUP"
	DeliveryCourier DeliveryMethod = "DELIVERY"
)

// OnlineOrder is a self-service parts-shop purchase, distinct from a repair
// job order. Item names and prices are frozen at order time.
type OnlineOrder struct {
	ID              uuid.UUID          `json:"id"`
	OrderNumber     string             `json:"order_number"`
	CustomerName    string             `json:"customer_name"`
	Phone           string             `json:"phone"`
	Email           string             `json:"email,omitempty"`
	Address         string             `json:"address,omitempty"`
	Items           []*OnlineOrderItem `json:"items,omitempty"`
	TotalAmount     float64            `json:"total_amount"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryMethod  DeliveryMethod     `json:"delivery_method"`
	Status          Status             `json:"status"`
	IsArchived      bool               `json:"is_archived"`
	TrackingNumber  string             `json:"tracking_number,omitempty"`
	Courier         string             `json:"courier,omitempty"`
	RefundReference string             `json:"refund_reference,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OnlineOrderItem is a frozen snapshot of a shop part at order time.
type OnlineOrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	PartID    uuid.UUID `json:"part_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// CartItem describes what a shop visitor wants to buy.
type CartItem struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// PlaceOrderRequest is the public payload for creating an online order.
type PlaceOrderRequest struct {
	CustomerName   string     `json:"customer_name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email,omitempty"`
	Address        string     `json:"address,omitempty"`
	PaymentMethod  string     `json:"payment_method"`
	DeliveryMethod string     `json:"delivery_method"`
	Items          []CartItem `json:"items"`
}

// UpdateTrackingRequest is the payload for populating courier tracking.
type UpdateTrackingRequest struct {
	TrackingNumber string `json:"tracking_number"`
	Courier        string `json:"courier"`
}

// CancelRequest is the payload for cancelling an order. A refund reference
// is mandatory when cancelling after payment confirmation.
type CancelRequest struct {
	RefundReference string `json:"refund_reference,omitempty"`
}
