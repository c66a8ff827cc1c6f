package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultStreamMaxLen = 10000

// RedisStreamSink appends events to a capped Redis stream.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamSink(client *redis.Client, stream string) *RedisStreamSink {
	return &RedisStreamSink{
		client: client,
		stream: stream,
		maxLen: defaultStreamMaxLen,
	}
}

func (s *RedisStreamSink) Publish(ctx context.Context, ev Event) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"event_id":       ev.ID.String(),
			"event_type":     ev.Type,
			"appointment_id": ev.AppointmentID,
			"payload":        string(ev.Payload),
			"created_at":     ev.CreatedAt.Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
