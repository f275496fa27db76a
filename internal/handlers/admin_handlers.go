package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pitstop/garage-bookings/internal/database"
	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

// InitDB creates the schema and seeds the default admin and test
// customer. Safe to call repeatedly.
func (h *Handlers) InitDB(w http.ResponseWriter, r *http.Request) {
	seeded, err := database.Initialize(r.Context(), h.db)
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to initialize database", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to initialize database")
		return
	}

	if seeded {
		writeJSON(w, http.StatusCreated, map[string]string{
			"message": "Database initialized and default admin/test customer created",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Database already initialized",
	})
}

// Login authenticates an admin and returns a bearer token for the
// admin API along with the dashboard redirect.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	user, token, err := h.authService.AuthenticateAdmin(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password, or not an admin")
			return
		}
		logger.ErrorContext(r.Context(), "Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, domain.LoginResponse{
		Message:  "Login successful",
		UserID:   user.ID,
		FullName: user.FullName,
		UserType: user.UserType,
		Redirect: "/admin_dashboard",
		Token:    token,
	})
}

// ListBookings returns every booking with denormalized customer fields,
// ordered by slot ascending.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	views, err := h.bookingService.ListBookings(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list bookings", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve bookings")
		return
	}
	if views == nil {
		views = []domain.BookingView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// UpdateStatus sets a booking to any of the pipeline labels. The label
// must match exactly; the current status never constrains the new one.
func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid booking ID")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	view, err := h.bookingService.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "Invalid status: "+body.Status)
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Booking not found")
		case errors.Is(err, domain.ErrSlotTaken):
			writeError(w, http.StatusConflict, "Cannot reactivate booking: slot is taken by another active booking")
		default:
			logger.ErrorContext(r.Context(), "Failed to update status", "error", err, "booking_id", id)
			writeError(w, http.StatusInternalServerError, "Failed to update status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Status updated to " + view.Status + " successfully",
	})
}
