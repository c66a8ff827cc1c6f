package appointment

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/smart-scheduler/internal/catalog"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	return NewLedger(catalog.Default(), WithClock(func() time.Time { return fixedNow }))
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, 6, day, hour, min, 0, 0, time.UTC)
}

func alice() Customer {
	return Customer{Name: "Alice", Email: "alice@example.com", Phone: "555-0100"}
}

func bob() Customer {
	return Customer{Name: "Bob", Email: "bob@example.com"}
}

func mustBook(t *testing.T, l *Ledger, c Customer, service string, start time.Time) Appointment {
	t.Helper()
	appt, err := l.Book(NewBooking{Customer: c, ServiceID: service, StartTime: start})
	require.NoError(t, err)
	return appt
}

func TestBook_Scenario(t *testing.T) {
	l := newTestLedger()

	first, err := l.Book(NewBooking{Customer: alice(), ServiceID: "consultation", StartTime: at(10, 10, 0), Notes: "first visit"})
	require.NoError(t, err)
	assert.Equal(t, "appt_1", first.ID)
	assert.Equal(t, at(10, 11, 0), first.EndTime)
	assert.Equal(t, StatusConfirmed, first.Status)
	assert.Equal(t, fixedNow, first.CreatedAt)
	assert.Equal(t, "first visit", first.Notes)
	assert.Equal(t, alice(), first.Customer)

	_, err = l.Book(NewBooking{Customer: bob(), ServiceID: "followup", StartTime: at(10, 10, 15)})
	assert.ErrorIs(t, err, ErrConflict)

	second, err := l.Book(NewBooking{Customer: bob(), ServiceID: "followup", StartTime: at(10, 11, 0)})
	require.NoError(t, err)
	assert.Equal(t, "appt_2", second.ID)
	assert.Equal(t, at(10, 11, 30), second.EndTime)

	assert.Len(t, l.List(Filter{}), 2)
}

func TestBook_UnknownService(t *testing.T) {
	l := newTestLedger()

	_, err := l.Book(NewBooking{Customer: alice(), ServiceID: "massage", StartTime: at(10, 10, 0)})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Empty(t, l.List(Filter{}))
}

func TestBook_DurationOverride(t *testing.T) {
	l := newTestLedger()

	appt, err := l.Book(NewBooking{Customer: alice(), ServiceID: "followup", StartTime: at(10, 9, 0), DurationMinutes: 120})
	require.NoError(t, err)
	assert.Equal(t, at(10, 11, 0), appt.EndTime)

	_, err = l.Book(NewBooking{Customer: alice(), ServiceID: "followup", StartTime: at(10, 12, 0), DurationMinutes: -5})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBook_RejectsDurationThatOverflows(t *testing.T) {
	l := newTestLedger()

	for _, minutes := range []int{200_000_000, int(maxDurationMinutes) + 1} {
		_, err := l.Book(NewBooking{Customer: alice(), ServiceID: "consultation", StartTime: at(10, 10, 0), DurationMinutes: minutes})
		assert.ErrorIs(t, err, ErrInvalidArgument, "minutes=%d", minutes)
	}
	assert.Empty(t, l.List(Filter{}))

	mustBook(t, l, alice(), "consultation", at(10, 10, 0))
	_, err := l.Book(NewBooking{Customer: bob(), ServiceID: "consultation", StartTime: at(10, 10, 0)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBook_CancelledStillBlocks(t *testing.T) {
	l := newTestLedger()
	appt := mustBook(t, l, alice(), "consultation", at(10, 10, 0))

	_, _, err := l.Cancel(appt.ID)
	require.NoError(t, err)

	_, err = l.Book(NewBooking{Customer: bob(), ServiceID: "consultation", StartTime: at(10, 10, 30)})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBook_AdjacentIntervalsDoNotConflict(t *testing.T) {
	l := newTestLedger()
	mustBook(t, l, alice(), "consultation", at(10, 10, 0))

	mustBook(t, l, bob(), "followup", at(10, 9, 30))
	mustBook(t, l, bob(), "followup", at(10, 11, 0))
}

func TestBook_NeverStoresOverlappingEntries(t *testing.T) {
	l := newTestLedger()
	services := []string{"consultation", "followup", "treatment"}

	for i := 0; i < 60; i++ {
		start := at(10, 8, 0).Add(time.Duration(i*17) * time.Minute)
		_, err := l.Book(NewBooking{Customer: alice(), ServiceID: services[i%3], StartTime: start})
		if err != nil {
			require.ErrorIs(t, err, ErrConflict)
		}
	}

	all := l.List(Filter{})
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.False(t, overlaps(all[i].StartTime, all[i].EndTime, all[j].StartTime, all[j].EndTime),
				"%s overlaps %s", all[i].ID, all[j].ID)
		}
	}
}

func TestBook_ConcurrentOverlappingSingleWinner(t *testing.T) {
	l := newTestLedger()

	const workers = 50
	var (
		wg        sync.WaitGroup
		wins      atomic.Int32
		conflicts atomic.Int32
	)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := l.Book(NewBooking{
				Customer:  alice(),
				ServiceID: "consultation",
				StartTime: at(10, 10, 0).Add(time.Duration(i%4) * 10 * time.Minute),
			})
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, ErrConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
	assert.Len(t, l.List(Filter{}), 1)
}

func TestCancel(t *testing.T) {
	l := newTestLedger()
	booked := mustBook(t, l, alice(), "consultation", at(10, 10, 0))

	cancelled, changed, err := l.Cancel(booked.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	expected := booked
	expected.Status = StatusCancelled
	assert.Equal(t, expected, cancelled)

	again, changed, err := l.Cancel(booked.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, expected, again)

	stored, err := l.Get(booked.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, stored)
}

func TestCancel_Unknown(t *testing.T) {
	_, _, err := newTestLedger().Cancel("appt_42")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestBook_IDsAreSizeBased(t *testing.T) {
	l := newTestLedger()
	a := mustBook(t, l, alice(), "followup", at(10, 9, 0))
	_, _, err := l.Cancel(a.ID)
	require.NoError(t, err)

	b := mustBook(t, l, alice(), "followup", at(10, 13, 0))
	assert.Equal(t, "appt_2", b.ID)
}

func TestAvailability_Scenario(t *testing.T) {
	l := newTestLedger()
	mustBook(t, l, alice(), "consultation", at(10, 10, 0))
	mustBook(t, l, bob(), "followup", at(10, 11, 0))

	slots, err := l.Availability(at(10, 0, 0), "consultation")
	require.NoError(t, err)
	require.Len(t, slots, 16)

	assert.Equal(t, at(10, 9, 0), slots[0].StartTime)
	assert.Equal(t, at(10, 10, 0), slots[0].EndTime)
	assert.True(t, slots[0].Available)

	// 09:30-10:30 overlaps appt_1.
	assert.Equal(t, at(10, 9, 30), slots[1].StartTime)
	assert.False(t, slots[1].Available)

	// 11:00-12:00 overlaps appt_2.
	assert.Equal(t, at(10, 11, 0), slots[4].StartTime)
	assert.False(t, slots[4].Available)

	// 11:30-12:30 is clear of both.
	assert.True(t, slots[5].Available)

	last := slots[len(slots)-1]
	assert.Equal(t, at(10, 16, 30), last.StartTime)
	assert.Equal(t, at(10, 17, 30), last.EndTime)
}

func TestAvailability_WindowAndRecomputation(t *testing.T) {
	l := newTestLedger()
	mustBook(t, l, alice(), "treatment", at(11, 13, 0))
	booked := l.List(Filter{})

	for _, svc := range catalog.Default().List() {
		slots, err := l.Availability(at(11, 15, 45), svc.ID)
		require.NoError(t, err)
		require.Len(t, slots, 16, svc.ID)

		for i, s := range slots {
			assert.Equal(t, at(11, 9, 0).Add(time.Duration(i)*slotStep), s.StartTime)
			assert.Equal(t, s.StartTime.Add(time.Duration(svc.DurationMinutes)*time.Minute), s.EndTime)

			busy := false
			for _, a := range booked {
				if a.StartTime.Before(s.EndTime) && a.EndTime.After(s.StartTime) {
					busy = true
				}
			}
			assert.Equal(t, !busy, s.Available, "%s slot %s", svc.ID, s.StartTime)
		}
	}
}

func TestAvailability_CancelledStillBlocks(t *testing.T) {
	l := newTestLedger()
	appt := mustBook(t, l, alice(), "followup", at(10, 9, 0))
	_, _, err := l.Cancel(appt.ID)
	require.NoError(t, err)

	slots, err := l.Availability(at(10, 0, 0), "followup")
	require.NoError(t, err)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].Available)
}

func TestAvailability_OtherDayUnaffected(t *testing.T) {
	l := newTestLedger()
	mustBook(t, l, alice(), "consultation", at(10, 10, 0))

	slots, err := l.Availability(at(11, 0, 0), "consultation")
	require.NoError(t, err)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestAvailability_UnknownService(t *testing.T) {
	_, err := newTestLedger().Availability(at(10, 0, 0), "massage")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestList_Filters(t *testing.T) {
	l := newTestLedger()
	a1 := mustBook(t, l, alice(), "consultation", at(10, 10, 0))
	b1 := mustBook(t, l, bob(), "followup", at(10, 14, 0))
	a2 := mustBook(t, l, alice(), "followup", at(11, 9, 0))

	day10 := at(10, 0, 0)

	assert.Equal(t, []Appointment{a1, b1, a2}, l.List(Filter{}))
	assert.Equal(t, []Appointment{a1, b1}, l.List(Filter{Date: &day10}))
	assert.Equal(t, []Appointment{a1, a2}, l.List(Filter{CustomerEmail: "alice@example.com"}))
	assert.Equal(t, []Appointment{a1}, l.List(Filter{Date: &day10, CustomerEmail: "alice@example.com"}))
	assert.Empty(t, l.List(Filter{CustomerEmail: "ALICE@example.com"}))
}

func TestList_ReturnsCopies(t *testing.T) {
	l := newTestLedger()
	mustBook(t, l, alice(), "consultation", at(10, 10, 0))

	listed := l.List(Filter{})
	listed[0].Status = StatusCancelled
	listed[0].Customer.Email = "mallory@example.com"

	stored, err := l.Get("appt_1")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.Equal(t, "alice@example.com", stored.Customer.Email)
}

func TestStats(t *testing.T) {
	l := newTestLedger()
	assert.Equal(t, Stats{}, l.Stats())

	a := mustBook(t, l, alice(), "followup", at(10, 9, 0))
	mustBook(t, l, alice(), "followup", at(10, 10, 0))
	mustBook(t, l, alice(), "followup", at(10, 11, 0))
	mustBook(t, l, alice(), "followup", at(10, 12, 0))

	_, _, err := l.Cancel(a.ID)
	require.NoError(t, err)
	_, _, err = l.Cancel(a.ID)
	require.NoError(t, err)

	s := l.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Confirmed)
	assert.Equal(t, 1, s.Cancelled)
	assert.InDelta(t, 25.0, s.CancellationRate, 1e-9)
}
