package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pitstop/garage-bookings/internal/domain"
	"github.com/pitstop/garage-bookings/pkg/logger"
)

// Book creates a booking for a customer, creating their user record on
// first contact. The tracking key echoed back is the submitted phone
// number.
func (h *Handlers) Book(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	booking, err := h.bookingService.Book(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSlotTaken):
			writeError(w, http.StatusConflict, "This slot is already booked, please pick another time")
		default:
			logger.ErrorContext(r.Context(), "Failed to create booking", "error", err)
			writeError(w, http.StatusInternalServerError, "Could not save the booking due to a database error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, domain.BookingResponse{
		Message:     "Booking saved successfully",
		BookingID:   booking.ID,
		TrackingKey: req.Phone,
	})
}

// Track looks up the latest booking for a phone number or email.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing tracking key")
		return
	}

	view, err := h.bookingService.Track(r.Context(), key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No booking found for "+key)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to track booking", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to look up booking")
		return
	}

	writeJSON(w, http.StatusOK, domain.TrackResponse{
		Message: "Status found",
		Data:    *view,
	})
}
