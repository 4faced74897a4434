package joborder

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a job order.
type Status string

const (
	StatusReceived        Status = "RECEIVED"
	StatusDiagnosing      Status = "DIAGNOSING"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusWaitingForParts Status = "WAITING_FOR_PARTS"
	StatusCompleted       Status = "COMPLETED"
	StatusReleased        Status = "RELEASED"
)

// validStatuses is the closed set of states. Staff may move an order
// between any two of them; progression is not strictly linear.
var validStatuses = map[Status]bool{
	StatusReceived:        true,
	StatusDiagnosing:      true,
	StatusInProgress:      true,
	StatusWaitingForParts: true,
	StatusCompleted:       true,
	StatusReleased:        true,
}

// Priority marks how urgently a job order should be worked.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityUrgent Priority = "URGENT"
)

// JobOrder is a tracked repair engagement for one vehicle.
// CustomerName, VehicleDesc, Plate and MechanicName are read-model fields
// resolved on fetch for display; they are not stored on the row.
type JobOrder struct {
	ID            uuid.UUID       `json:"id"`
	JobNumber     string          `json:"job_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	VehicleID     uuid.UUID       `json:"vehicle_id"`
	MechanicID    *uuid.UUID      `json:"mechanic_id,omitempty"`
	Complaint     string          `json:"complaint"`
	Notes         string          `json:"notes,omitempty"`
	EstimatedCost float64         `json:"estimated_cost"`
	Priority      Priority        `json:"priority"`
	Status        Status          `json:"status"`
	IsArchived    bool            `json:"is_archived"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Parts         []*JobOrderPart `json:"parts,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	VehicleDesc   string          `json:"vehicle_desc,omitempty"`
	Plate         string          `json:"plate,omitempty"`
	MechanicName  string          `json:"mechanic_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Invoiced reports whether billing has been frozen for this order.
func (j *JobOrder) Invoiced() bool { return j.InvoiceID != nil }

// Subtotal is the billing draft amount: labor estimate plus attached parts.
// Derived, never stored before invoice issuance.
func (j *JobOrder) Subtotal() float64 {
	total := j.EstimatedCost
	for _, p := range j.Parts {
		total += p.UnitPrice * float64(p.Quantity)
	}
	return total
}

// JobOrderPart is a part line attached to a job order. UnitPrice is the
// part's selling price captured at attach time, not a live reference.
type JobOrderPart struct {
	ID         uuid.UUID `json:"id"`
	JobOrderID uuid.UUID `json:"job_order_id"`
	PartID     uuid.UUID `json:"part_id"`
	PartName   string    `json:"part_name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateJobOrderRequest is the payload for opening a job order.
// BookingID optionally names a confirmed appointment that seeded this
// intake; it is marked completed in the same transaction.
type CreateJobOrderRequest struct {
	CustomerID    string  `json:"customer_id"`
	VehicleID     string  `json:"vehicle_id"`
	MechanicID    string  `json:"mechanic_id,omitempty"`
	Complaint     string  `json:"complaint"`
	Notes         string  `json:"notes,omitempty"`
	EstimatedCost float64 `json:"estimated_cost"`
	Priority      string  `json:"priority,omitempty"`
	BookingID     string  `json:"booking_id,omitempty"`
}

// UpdateJobOrderRequest updates workable fields of an open job order.
type UpdateJobOrderRequest struct {
	MechanicID    string  `json:"mechanic_id,omitempty"`
	Complaint     string  `json:"complaint"`
	Notes         string  `json:"notes,omitempty"`
	EstimatedCost float64 `json:"estimated_cost"`
	Priority      string  `json:"priority,omitempty"`
}

// UpdateStatusRequest is the payload for moving an order to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AttachPartRequest is the payload for attaching stock to the billing draft.
type AttachPartRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
	Actor    string `json:"actor,omitempty"`
}
