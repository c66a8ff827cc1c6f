package appointment

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/hackgods/smart-scheduler/internal/catalog"
)

const (
	dayStartHour = 9
	dayEndHour   = 17
	slotStep     = 30 * time.Minute

	idPrefix = "appt_"

	// maxDurationMinutes is the longest duration a time.Duration can hold.
	maxDurationMinutes = math.MaxInt64 / int64(time.Minute)
)

// Ledger owns every appointment for the lifetime of the process.
//
// Book and Cancel run entirely under the write lock, so the conflict check and
// the insert are one indivisible step: of two concurrent overlapping bookings
// at most one succeeds. Availability, List, Stats and Get share the read lock
// and never see a half-applied mutation. Records handed out are copies.
type Ledger struct {
	catalog *catalog.Catalog
	now     func() time.Time

	mu    sync.RWMutex
	items []Appointment
	index map[string]int
}

type LedgerOption func(*Ledger)

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

func NewLedger(cat *catalog.Catalog, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		catalog: cat,
		now:     time.Now,
		index:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) Catalog() *catalog.Catalog {
	return l.catalog
}

// Availability returns the 09:00-17:00 slots of day in 30 minute steps. Each
// slot lasts the service's catalog duration, so consecutive slots overlap
// when the duration exceeds the step. A slot is unavailable when any ledger
// entry intersects it; cancelled entries still block.
func (l *Ledger) Availability(day time.Time, serviceID string) ([]Slot, error) {
	svc, err := l.catalog.Lookup(serviceID)
	if err != nil {
		return nil, err
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	y, m, d := day.Date()
	loc := day.Location()
	start := time.Date(y, m, d, dayStartHour, 0, 0, 0, loc)
	end := time.Date(y, m, d, dayEndHour, 0, 0, 0, loc)

	l.mu.RLock()
	defer l.mu.RUnlock()

	slots := make([]Slot, 0, int(end.Sub(start)/slotStep))
	for cursor := start; cursor.Before(end); cursor = cursor.Add(slotStep) {
		slotEnd := cursor.Add(duration)
		slots = append(slots, Slot{
			StartTime: cursor,
			EndTime:   slotEnd,
			Available: !l.overlapsAnyLocked(cursor, slotEnd),
		})
	}

	return slots, nil
}

// Book inserts a confirmed appointment unless its interval overlaps any
// existing entry, cancelled or not.
func (l *Ledger) Book(b NewBooking) (Appointment, error) {
	svc, err := l.catalog.Lookup(b.ServiceID)
	if err != nil {
		return Appointment{}, err
	}

	minutes := b.DurationMinutes
	if minutes == 0 {
		minutes = svc.DurationMinutes
	}
	if minutes < 0 {
		return Appointment{}, fmt.Errorf("%w: duration_minutes must be positive", ErrInvalidArgument)
	}
	if int64(minutes) > maxDurationMinutes {
		return Appointment{}, fmt.Errorf("%w: duration_minutes %d is too large", ErrInvalidArgument, minutes)
	}
	end := b.StartTime.Add(time.Duration(minutes) * time.Minute)
	if !end.After(b.StartTime) {
		return Appointment{}, fmt.Errorf("%w: end time must be after start time", ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.overlapsAnyLocked(b.StartTime, end) {
		return Appointment{}, ErrConflict
	}

	appt := Appointment{
		ID:        idPrefix + strconv.Itoa(len(l.items)+1),
		Customer:  b.Customer,
		ServiceID: svc.ID,
		StartTime: b.StartTime,
		EndTime:   end,
		Status:    StatusConfirmed,
		CreatedAt: l.now(),
		Notes:     b.Notes,
	}
	l.index[appt.ID] = len(l.items)
	l.items = append(l.items, appt)

	return appt, nil
}

// Cancel marks an appointment cancelled. Cancelling twice is a no-op success;
// changed reports whether this call performed the transition.
func (l *Ledger) Cancel(id string) (appt Appointment, changed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return Appointment{}, false, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}

	if l.items[i].Status != StatusCancelled {
		l.items[i].Status = StatusCancelled
		changed = true
	}
	return l.items[i], changed, nil
}

func (l *Ledger) Get(id string) (Appointment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.index[id]
	if !ok {
		return Appointment{}, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
	}
	return l.items[i], nil
}

// List returns matching appointments in insertion order.
func (l *Ledger) List(f Filter) []Appointment {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Appointment, 0, len(l.items))
	for _, a := range l.items {
		if f.Date != nil && !sameCivilDate(a.StartTime, *f.Date) {
			continue
		}
		if f.CustomerEmail != "" && a.Customer.Email != f.CustomerEmail {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var s Stats
	s.Total = len(l.items)
	for _, a := range l.items {
		switch a.Status {
		case StatusConfirmed:
			s.Confirmed++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	if s.Total > 0 {
		s.CancellationRate = float64(s.Cancelled) / float64(s.Total) * 100
	}
	return s
}

// overlapsAnyLocked is a linear scan; callers hold l.mu.
func (l *Ledger) overlapsAnyLocked(start, end time.Time) bool {
	for _, a := range l.items {
		if overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}
