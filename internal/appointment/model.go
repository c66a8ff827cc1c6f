package appointment

import (
	"time"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Customer is embedded by value in every appointment. There is no customer
// identity beyond the email string.
type Customer struct {
	Name  string
	Email string
	Phone string
}

type Appointment struct {
	ID        string
	Customer  Customer
	ServiceID string
	StartTime time.Time
	EndTime   time.Time
	Status    AppointmentStatus
	CreatedAt time.Time
	Notes     string
}

// Slot is a candidate booking interval [StartTime, EndTime).
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

type Stats struct {
	Total            int
	Confirmed        int
	Cancelled        int
	CancellationRate float64
}

type Insights struct {
	Stats
	Insights []string
}

// NewBooking is the ledger-level input of Book. A zero DurationMinutes means
// "use the service's catalog duration".
type NewBooking struct {
	Customer        Customer
	ServiceID       string
	StartTime       time.Time
	DurationMinutes int
	Notes           string
}

// Filter narrows List. Unset fields do not filter; set fields are ANDed.
type Filter struct {
	Date          *time.Time
	CustomerEmail string
}

// BookingRequest is the unvalidated booking input as received from a client.
type BookingRequest struct {
	Customer        Customer
	ServiceID       string
	StartTime       string
	DurationMinutes *int
	Notes           string
}
