package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

// The repair pipeline, in order. The order is informational only: the
// admin endpoint may set any label regardless of the current one.
const (
	StatusConfirmed        BookingStatus = "confirmed"
	StatusAwaitingPickup   BookingStatus = "awaiting_pickup"
	StatusVehicleCheckedIn BookingStatus = "vehicle_checked_in"
	StatusInspection       BookingStatus = "inspection_estimate"
	StatusAwaitingParts    BookingStatus = "awaiting_parts_approval"
	StatusInProgress       BookingStatus = "in_progress"
	StatusQualityControl   BookingStatus = "quality_control"
	StatusCompleted        BookingStatus = "completed"
)

var StatusPipeline = []BookingStatus{
	StatusConfirmed,
	StatusAwaitingPickup,
	StatusVehicleCheckedIn,
	StatusInspection,
	StatusAwaitingParts,
	StatusInProgress,
	StatusQualityControl,
	StatusCompleted,
}

// ParseBookingStatus matches the label exactly, no normalization.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range StatusPipeline {
		if BookingStatus(s) == st {
			return st, true
		}
	}
	return "", false
}

// Active reports whether the booking still occupies its slot. Only the
// terminal stage frees the (date, time) pair for rebooking.
func (s BookingStatus) Active() bool {
	return s != StatusCompleted
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

type Booking struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	ServiceType  string        `json:"service_type"`
	BookingDate  string        `json:"booking_date"`
	BookingTime  string        `json:"booking_time"`
	LicensePlate string        `json:"license_plate"`
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
}

// BookingView is a booking with customer fields denormalized from the
// related user at read time. An absent relation renders "N/A" rather
// than failing.
type BookingView struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"user_id"`
	FullName     string `json:"fullname"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email"`
	ServiceType  string `json:"service_type"`
	BookingDate  string `json:"booking_date"`
	BookingTime  string `json:"booking_time"`
	LicensePlate string `json:"license_plate"`
	Status       string `json:"status"`
}

type BookingRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ServiceType  string `json:"service_type"`
	BookingDate  string `json:"booking_date"`
	BookingTime  string `json:"booking_time"`
	LicensePlate string `json:"license_plate"`
}

func (r *BookingRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.ServiceType = strings.TrimSpace(r.ServiceType)
	r.LicensePlate = strings.TrimSpace(r.LicensePlate)
}

// Validate checks required fields and parses the date and time. The
// returned values are normalized to the storage layouts so that slot
// equality is a plain string comparison.
func (r *BookingRequest) Validate() (date, clock string, err error) {
	if r.FirstName == "" || r.LastName == "" || r.Email == "" || r.Phone == "" ||
		r.ServiceType == "" || r.LicensePlate == "" {
		return "", "", fmt.Errorf("%w: missing required field", ErrValidation)
	}

	d, err := time.Parse(DateLayout, r.BookingDate)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid booking_date %q", ErrValidation, r.BookingDate)
	}
	t, err := time.Parse("15:04", r.BookingTime)
	if err != nil {
		if t, err = time.Parse(TimeLayout, r.BookingTime); err != nil {
			return "", "", fmt.Errorf("%w: invalid booking_time %q", ErrValidation, r.BookingTime)
		}
	}

	return d.Format(DateLayout), t.Format(TimeLayout), nil
}

func (r *BookingRequest) FullName() string {
	return r.FirstName + " " + r.LastName
}

type BookingResponse struct {
	Message     string `json:"message"`
	BookingID   int64  `json:"booking_id"`
	TrackingKey string `json:"tracking_key"`
}

type TrackResponse struct {
	Message string      `json:"message"`
	Data    BookingView `json:"data"`
}
