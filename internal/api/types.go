package api

import (
	"time"

	"github.com/hackgods/smart-scheduler/internal/appointment"
)

const timestampLayout = "2006-01-02T15:04:05.999999999"

type CustomerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type CreateAppointmentRequest struct {
	Customer        CustomerPayload `json:"customer"`
	Service         string          `json:"service"`
	StartTime       string          `json:"start_time"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID        string          `json:"id"`
	Customer  CustomerPayload `json:"customer"`
	Service   string          `json:"service"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	Notes     string          `json:"notes,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Count        int                   `json:"count"`
}

type CancelResponse struct {
	Message       string `json:"message"`
	AppointmentID string `json:"appointment_id"`
}

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

type ServiceResponse struct {
	Name     string  `json:"name"`
	Duration int     `json:"duration"`
	Price    float64 `json:"price"`
}

type ServicesResponse struct {
	Services map[string]ServiceResponse `json:"services"`
}

type InsightsResponse struct {
	TotalAppointments int      `json:"total_appointments"`
	Confirmed         int      `json:"confirmed"`
	Cancelled         int      `json:"cancelled"`
	CancellationRate  float64  `json:"cancellation_rate"`
	Insights          []string `json:"insights"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (r CreateAppointmentRequest) toBooking() appointment.BookingRequest {
	return appointment.BookingRequest{
		Customer: appointment.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		ServiceID:       r.Service,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
	}
}

// formatTimestamp renders naive timestamps without an offset and keeps the
// offset, "Z" included, of timestamps that were submitted with one.
func formatTimestamp(t time.Time) string {
	if appointment.IsNaive(t) {
		return t.Format(timestampLayout)
	}
	return t.Format(time.RFC3339Nano)
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID: a.ID,
		Customer: CustomerPayload{
			Name:  a.Customer.Name,
			Email: a.Customer.Email,
			Phone: a.Customer.Phone,
		},
		Service:   a.ServiceID,
		StartTime: formatTimestamp(a.StartTime),
		EndTime:   formatTimestamp(a.EndTime),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		Notes:     a.Notes,
	}
}
