package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/medislot/medislot-server/internal/auth"
	"github.com/medislot/medislot-server/internal/booking"
)

func receptionistLoginHandler(gate *auth.Gate, sessionTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "could not parse JSON")
			return
		}

		token, err := gate.Login(req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidCredentials):
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid username or password")
			case errors.Is(err, auth.ErrNotConfigured):
				writeError(w, http.StatusServiceUnavailable, "auth_unavailable", "receptionist login is not configured")
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(sessionTTL),
		})
	}
}

// dashboardHandler returns the full appointment listing plus revenue and
// recent audit events. Session-guarded.
func dashboardHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.ListAppointments(r.Context(), "", 500, 0)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		events, err := svc.RecentEvents(r.Context(), 50)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := DashboardResponse{
			Appointments: make([]AppointmentResponse, 0, len(appts)),
			Events:       make([]EventResponse, 0, len(events)),
		}
		for i := range appts {
			resp.Appointments = append(resp.Appointments, toAppointmentResponse(&appts[i]))
			resp.TotalRevenue += appts[i].Amount
		}
		resp.Total = len(appts)

		for _, ev := range events {
			out := EventResponse{
				ID:        ev.ID,
				EventType: ev.EventType,
				CreatedAt: ev.CreatedAt,
			}
			if ev.AppointmentID != nil {
				out.AppointmentID = ev.AppointmentID.String()
			}
			resp.Events = append(resp.Events, out)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
