package events

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const eventLogSchema = `
CREATE TABLE IF NOT EXISTS event_logs (
	id             BIGSERIAL PRIMARY KEY,
	event_id       UUID NOT NULL UNIQUE,
	event_type     TEXT NOT NULL,
	appointment_id TEXT NOT NULL,
	payload        JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PgSink appends events to the event_logs table.
type PgSink struct {
	pool *pgxpool.Pool
}

func NewPgSink(pool *pgxpool.Pool) *PgSink {
	return &PgSink{pool: pool}
}

func (s *PgSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, eventLogSchema); err != nil {
		return fmt.Errorf("create event_logs: %w", err)
	}
	return nil
}

func (s *PgSink) Publish(ctx context.Context, ev Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_logs (event_id, event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`, ev.ID, ev.Type, ev.AppointmentID, nullablePayload(ev.Payload), nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}
