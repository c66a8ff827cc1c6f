package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	got []Event
	err error
}

func (c *captureSink) Publish(_ context.Context, ev Event) error {
	c.got = append(c.got, ev)
	return c.err
}

func TestNew(t *testing.T) {
	ev := New(TypeAppointmentBooked, "appt_1", []byte(`{"a":1}`))

	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, TypeAppointmentBooked, ev.Type)
	assert.Equal(t, "appt_1", ev.AppointmentID)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	failing := &captureSink{err: errors.New("redis down")}
	healthy := &captureSink{}
	ev := New(TypeAppointmentCancelled, "appt_2", nil)

	err := Fanout{failing, healthy, LogSink{}, Nop{}}.Publish(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")

	require.Len(t, healthy.got, 1)
	assert.Equal(t, ev, healthy.got[0])
	assert.Len(t, failing.got, 1)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, Fanout(nil).Publish(context.Background(), New(TypeAppointmentBooked, "appt_1", nil)))
}

func TestNullableHelpers(t *testing.T) {
	assert.Nil(t, nullablePayload(nil))
	assert.Equal(t, `{}`, *nullablePayload([]byte(`{}`)))

	assert.Nil(t, nullableTime(time.Time{}))
	now := time.Now()
	assert.Equal(t, now, *nullableTime(now))
}
