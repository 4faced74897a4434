package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// validTransitions defines the booking state machine. COMPLETED is only
// reached when a job order is opened from a confirmed booking.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
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

// Terminal reports whether the booking can be purged.
func (s Status) Terminal() bool { return s == StatusCancelled || s == StatusCompleted }

// Booking is a service appointment request, taken before any customer
// or vehicle record exists.
type Booking struct {
	ID            uuid.UUID `json:"id"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email,omitempty"`
	VehicleInfo   string    `json:"vehicle_info"`
	ServiceType   string    `json:"service_type"`
	PreferredDate time.Time `json:"preferred_date"`
	Notes         string    `json:"notes,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateBookingRequest is the public payload for requesting an appointment.
type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email,omitempty"`
	VehicleInfo   string `json:"vehicle_info"`
	ServiceType   string `json:"service_type"`
	PreferredDate string `json:"preferred_date"`
	Notes         string `json:"notes,omitempty"`
}

// PurgeRequest guards bulk deletion of finished bookings.
type PurgeRequest struct {
	Confirm bool `json:"confirm"`
}
