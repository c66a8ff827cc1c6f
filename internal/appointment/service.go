package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/hackgods/smart-scheduler/internal/catalog"
	"github.com/hackgods/smart-scheduler/internal/config"
	"github.com/hackgods/smart-scheduler/internal/events"
)

var staticInsights = []string{
	"Your peak booking time is 2-4 PM",
	"Consider adding a waitlist feature",
	"Tuesday and Thursday are your busiest days",
}

// Service sits between the HTTP layer and the ledger. It parses and validates
// raw client input and publishes an event after every successful mutation.
type Service struct {
	ledger    *Ledger
	publisher events.Publisher
	cfg       config.Config
}

func NewService(ledger *Ledger, publisher events.Publisher, cfg config.Config) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		ledger:    ledger,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *Service) Services() []catalog.Service {
	return s.ledger.Catalog().List()
}

func (s *Service) Availability(ctx context.Context, date, serviceID string) ([]Slot, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.ledger.Availability(day, serviceID)
}

// Book validates req and inserts it into the ledger.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	nb, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	appt, err := s.ledger.Book(nb)
	if err != nil {
		return nil, err
	}

	log.Printf("appointment booked id=%s service=%s start=%s end=%s",
		appt.ID, appt.ServiceID, appt.StartTime.Format(time.RFC3339), appt.EndTime.Format(time.RFC3339))
	s.logEvent(ctx, appt, events.TypeAppointmentBooked)

	return &appt, nil
}

func (s *Service) List(ctx context.Context, date, customerEmail string) ([]Appointment, error) {
	var f Filter
	if date != "" {
		day, err := ParseDate(date)
		if err != nil {
			return nil, err
		}
		f.Date = &day
	}
	f.CustomerEmail = customerEmail

	return s.ledger.List(f), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	appt, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Cancel moves an appointment to cancelled. Only the first cancel emits an event.
func (s *Service) Cancel(ctx context.Context, id string) (*Appointment, error) {
	appt, changed, err := s.ledger.Cancel(id)
	if err != nil {
		return nil, err
	}

	if changed {
		log.Printf("appointment cancelled id=%s", appt.ID)
		s.logEvent(ctx, appt, events.TypeAppointmentCancelled)
	}

	return &appt, nil
}

func (s *Service) Insights(ctx context.Context) Insights {
	return Insights{
		Stats:    s.ledger.Stats(),
		Insights: append([]string(nil), staticInsights...),
	}
}

func (s *Service) validate(req BookingRequest) (NewBooking, error) {
	name := strings.TrimSpace(req.Customer.Name)
	if name == "" {
		return NewBooking{}, fmt.Errorf("%w: customer.name is required", ErrValidation)
	}

	email := strings.TrimSpace(req.Customer.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewBooking{}, fmt.Errorf("%w: customer.email %q is not a valid email address", ErrValidation, req.Customer.Email)
	}

	if req.ServiceID == "" {
		return NewBooking{}, fmt.Errorf("%w: service is required", ErrValidation)
	}

	start, err := ParseDateTime(req.StartTime)
	if err != nil {
		return NewBooking{}, fmt.Errorf("%w: start_time: %v", ErrValidation, err)
	}

	var minutes int
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return NewBooking{}, fmt.Errorf("%w: duration_minutes must be positive", ErrValidation)
		}
		if int64(*req.DurationMinutes) > maxDurationMinutes {
			return NewBooking{}, fmt.Errorf("%w: duration_minutes %d is too large", ErrValidation, *req.DurationMinutes)
		}
		minutes = *req.DurationMinutes
	}

	return NewBooking{
		Customer: Customer{
			Name:  name,
			Email: email,
			Phone: strings.TrimSpace(req.Customer.Phone),
		},
		ServiceID:       req.ServiceID,
		StartTime:       start,
		DurationMinutes: minutes,
		Notes:           req.Notes,
	}, nil
}

type eventPayload struct {
	ServiceID     string    `json:"service"`
	CustomerEmail string    `json:"customer_email"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

// logEvent publishes best effort. The ledger is authoritative, so sink
// failures are logged and never surface to the caller.
func (s *Service) logEvent(ctx context.Context, appt Appointment, eventType string) {
	data, err := json.Marshal(eventPayload{
		ServiceID:     appt.ServiceID,
		CustomerEmail: appt.Customer.Email,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
		Status:        string(appt.Status),
	})
	if err != nil {
		log.Printf("failed to marshal event payload for %s: %v", eventType, err)
		data = nil
	}

	timeout := s.cfg.EventTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, events.New(eventType, appt.ID, data)); err != nil {
		log.Printf("failed to publish event %s for appointment %s: %v", eventType, appt.ID, err)
	}
}
