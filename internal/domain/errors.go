// Sentinel error values shared by the service and repository layers.
// Handlers translate them into HTTP status codes; anything that does
// not match is treated as a store failure and surfaces as a 500.
package domain

import "errors"

// ErrValidation covers malformed dates and times and missing required
// fields. Handlers translate it into a 400.
var ErrValidation = errors.New("validation failed")

// ErrSlotTaken is returned when an active booking already holds the
// requested (date, time) pair. Handlers translate it into a 409.
var ErrSlotTaken = errors.New("slot already booked")

// ErrNotFound covers unknown tracking keys, users and bookings.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned on bad credentials or a non-admin role.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidStatus is returned when a status label is outside the
// fixed pipeline set. The booking is left untouched.
var ErrInvalidStatus = errors.New("invalid status")
