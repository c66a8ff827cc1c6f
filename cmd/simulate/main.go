package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/smart-scheduler/internal/api"
	"github.com/hackgods/smart-scheduler/internal/apiclient"
	"github.com/hackgods/smart-scheduler/internal/catalog"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	BookingRatio float64
	CancelRatio  float64
	ReadRatio    float64
	Date         time.Time
}

// Booked keeps the IDs and emails of appointments created during the run.
type Booked struct {
	mu     sync.RWMutex
	ids    []string
	emails []string
}

func (b *Booked) Add(id, email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ids = append(b.ids, id)
	b.emails = append(b.emails, email)
}

func (b *Booked) Random(rng *rand.Rand) (id, email string, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.ids) == 0 {
		return "", "", false
	}
	i := rng.Intn(len(b.ids))
	return b.ids[i], b.emails[i], true
}

type Metrics struct {
	Booking      OperationMetrics
	Cancel       OperationMetrics
	Availability OperationMetrics
	List         OperationMetrics
}

type Simulator struct {
	config   SimConfig
	client   *apiclient.Client
	services []catalog.Service
	booked   Booked
	metrics  Metrics
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("simulator starting")

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("config: duration=%s workers=%d booking=%.2f cancel=%.2f read=%.2f date=%s",
		cfg.Duration, cfg.Workers, cfg.BookingRatio, cfg.CancelRatio, cfg.ReadRatio, cfg.Date.Format("2006-01-02"))

	sim := &Simulator{
		config:   cfg,
		client:   apiclient.New(cfg.APIBaseURL, 10*time.Second),
		services: catalog.Default().List(),
	}

	sim.Run()
	sim.PrintReport()
	sim.Verify()
}

func loadConfig() (SimConfig, error) {
	date := getEnv("SIM_DATE", time.Now().AddDate(0, 0, 1).Format("2006-01-02"))
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return SimConfig{}, fmt.Errorf("SIM_DATE: %w", err)
	}

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8000"),
		Duration:     getDuration("SIM_DURATION", 15*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.4),
		Date:         day,
	}

	// Normalize ratios
	total := cfg.BookingRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	if cfg.Workers <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_DURATION must be > 0")
	}
	return cfg, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Printf("starting simulation for %s with %d workers", s.config.Duration, s.config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Println("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	faker := gofakeit.New(uint64(time.Now().UnixNano()) + uint64(workerID))

	for ctx.Err() == nil {
		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng, faker)
		case r < s.config.BookingRatio+s.config.CancelRatio:
			s.doCancel(ctx, rng)
		case rng.Intn(2) == 0:
			s.doAvailability(ctx, rng)
		default:
			s.doList(ctx, rng)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand, faker *gofakeit.Faker) {
	svc := s.services[rng.Intn(len(s.services))]
	// Quarter-hour starts inside the working day keep contention high.
	start := s.config.Date.Add(9*time.Hour + time.Duration(rng.Intn(32))*15*time.Minute)
	email := faker.Email()

	begin := time.Now()
	appt, err := s.client.Book(ctx, api.CreateAppointmentRequest{
		Customer:  api.CustomerPayload{Name: faker.Name(), Email: email, Phone: faker.Phone()},
		Service:   svc.ID,
		StartTime: start.Format("2006-01-02T15:04:05"),
	})
	latency := time.Since(begin)
	if ctx.Err() != nil {
		return
	}

	conflict := errors.Is(err, apiclient.ErrConflict)
	if err == nil {
		s.booked.Add(appt.ID, email)
	}
	s.metrics.Booking.Record(latency, err == nil, conflict)
}

func (s *Simulator) doCancel(ctx context.Context, rng *rand.Rand) {
	id, _, ok := s.booked.Random(rng)
	if !ok {
		return
	}

	begin := time.Now()
	err := s.client.Cancel(ctx, id)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Cancel.Record(time.Since(begin), err == nil, false)
}

func (s *Simulator) doAvailability(ctx context.Context, rng *rand.Rand) {
	svc := s.services[rng.Intn(len(s.services))]

	begin := time.Now()
	_, err := s.client.Availability(ctx, s.config.Date.Format("2006-01-02"), svc.ID)
	if ctx.Err() != nil {
		return
	}
	s.metrics.Availability.Record(time.Since(begin), err == nil, false)
}

func (s *Simulator) doList(ctx context.Context, rng *rand.Rand) {
	_, email, ok := s.booked.Random(rng)
	if !ok {
		return
	}

	begin := time.Now()
	_, err := s.client.List(ctx, "", email)
	if ctx.Err() != nil {
		return
	}
	s.metrics.List.Record(time.Since(begin), err == nil, false)
}

// Verify re-reads the day and fails if any two stored appointments overlap.
func (s *Simulator) Verify() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := s.client.List(ctx, s.config.Date.Format("2006-01-02"), "")
	if err != nil {
		log.Fatalf("verify: list appointments: %v", err)
	}

	overlaps, err := countOverlaps(list.Appointments)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}
	if overlaps > 0 {
		log.Fatalf("verify: %d overlapping appointment pairs found", overlaps)
	}
	log.Printf("verify ok: %d appointments, no overlaps", list.Count)
}

func countOverlaps(appts []api.AppointmentResponse) (int, error) {
	type interval struct{ start, end time.Time }

	intervals := make([]interval, 0, len(appts))
	for _, a := range appts {
		start, err := time.Parse("2006-01-02T15:04:05", a.StartTime)
		if err != nil {
			return 0, fmt.Errorf("parse start of %s: %w", a.ID, err)
		}
		end, err := time.Parse("2006-01-02T15:04:05", a.EndTime)
		if err != nil {
			return 0, fmt.Errorf("parse end of %s: %w", a.ID, err)
		}
		intervals = append(intervals, interval{start, end})
	}

	n := 0
	for i := range intervals {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[i].start.Before(intervals[j].end) && intervals[j].start.Before(intervals[i].end) {
				n++
			}
		}
	}
	return n, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Availability", &s.metrics.Availability)
	printOperationReport("List by customer", &s.metrics.List)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
