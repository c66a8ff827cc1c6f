package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/smart-scheduler/internal/appointment"
)

const (
	serviceName  = "SmartScheduler API"
	msgConflict  = "Time slot not available. Please choose another time."
	msgCancelled = "Appointment cancelled successfully"
)

func rootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, StatusResponse{
			Status:  "online",
			Service: serviceName,
			Version: version,
		})
	}
}

func listServicesHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ServicesResponse{Services: make(map[string]ServiceResponse)}
		for _, s := range svc.Services() {
			resp.Services[s.ID] = ServiceResponse{
				Name:     s.Name,
				Duration: s.DurationMinutes,
				Price:    s.Price,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func availabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		date, service := q.Get("date"), q.Get("service")
		if date == "" || service == "" {
			writeError(w, http.StatusBadRequest, "missing_parameter", "date and service are required")
			return
		}

		slots, err := svc.Availability(r.Context(), date, service)
		if err != nil {
			handleError(w, err)
			return
		}

		resp := make([]SlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, SlotResponse{
				StartTime: formatTimestamp(s.StartTime),
				EndTime:   formatTimestamp(s.EndTime),
				Available: s.Available,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Book(r.Context(), req.toBooking())
		if err != nil {
			handleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		appts, err := svc.List(r.Context(), q.Get("date"), q.Get("customer_email"))
		if err != nil {
			handleError(w, err)
			return
		}

		resp := AppointmentListResponse{
			Appointments: make([]AppointmentResponse, 0, len(appts)),
			Count:        len(appts),
		}
		for _, a := range appts {
			resp.Appointments = append(resp.Appointments, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.Cancel(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CancelResponse{
			Message:       msgCancelled,
			AppointmentID: appt.ID,
		})
	}
}

func insightsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := svc.Insights(r.Context())
		writeJSON(w, http.StatusOK, InsightsResponse{
			TotalAppointments: in.Total,
			Confirmed:         in.Confirmed,
			Cancelled:         in.Cancelled,
			CancellationRate:  in.CancellationRate,
			Insights:          in.Insights,
		})
	}
}

func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, appointment.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, appointment.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrConflict):
		writeError(w, http.StatusConflict, "slot_not_available", msgConflict)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
