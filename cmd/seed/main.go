package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/smart-scheduler/internal/api"
	"github.com/hackgods/smart-scheduler/internal/apiclient"
	"github.com/hackgods/smart-scheduler/internal/catalog"
)

var notes = []string{
	"",
	"First visit",
	"Prefers morning appointments",
	"Bring previous lab results",
	"Referred by Dr. Patel",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	baseURL := flag.String("api", "http://localhost:8000", "scheduler API base URL")
	date := flag.String("date", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "day to fill (YYYY-MM-DD)")
	count := flag.Int("count", 12, "number of booking attempts")
	flag.Parse()

	day, err := time.Parse("2006-01-02", *date)
	if err != nil {
		log.Fatalf("invalid -date: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	client := apiclient.New(*baseURL, 10*time.Second)
	services := catalog.Default().List()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var booked, conflicts int
	for i := 0; i < *count; i++ {
		svc := services[gofakeit.Number(0, len(services)-1)]
		// 09:00 to 16:30 on the half hour
		start := day.Add(9*time.Hour + time.Duration(gofakeit.Number(0, 15))*30*time.Minute)

		req := api.CreateAppointmentRequest{
			Customer: api.CustomerPayload{
				Name:  gofakeit.Name(),
				Email: gofakeit.Email(),
				Phone: gofakeit.Phone(),
			},
			Service:   svc.ID,
			StartTime: start.Format("2006-01-02T15:04:05"),
			Notes:     notes[gofakeit.Number(0, len(notes)-1)],
		}

		appt, err := client.Book(ctx, req)
		switch {
		case errors.Is(err, apiclient.ErrConflict):
			conflicts++
		case err != nil:
			log.Fatalf("book appointment: %v", err)
		default:
			booked++
			log.Printf("booked id=%s service=%s start=%s customer=%s", appt.ID, appt.Service, appt.StartTime, appt.Customer.Email)
		}
	}

	log.Printf("seed complete booked=%d conflicts=%d", booked, conflicts)
}
