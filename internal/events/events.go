package events

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	TypeAppointmentBooked    = "APPOINTMENT_BOOKED"
	TypeAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

// Event is an audit record of a ledger mutation.
type Event struct {
	ID            uuid.UUID
	Type          string
	AppointmentID string
	Payload       []byte
	CreatedAt     time.Time
}

func New(eventType, appointmentID string, payload []byte) Event {
	return Event{
		ID:            uuid.New(),
		Type:          eventType,
		AppointmentID: appointmentID,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// LogSink writes events to the standard logger.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev Event) error {
	log.Printf("event type=%s appointment_id=%s event_id=%s payload=%s",
		ev.Type, ev.AppointmentID, ev.ID, ev.Payload)
	return nil
}

// Fanout publishes every event to all sinks, even when some fail.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
