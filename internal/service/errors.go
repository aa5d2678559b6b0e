package service

import "errors"

// Domain errors. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrSubscriberNotFound = errors.New("subscriber not found")

	ErrInvalidTimeRange       = errors.New("invalid time range: from must be <= to")
	ErrInvalidErrorParameters = errors.New("errorParameters must be drawn from ph, tds, temp")

	ErrNoValues       = errors.New("at least one sensor value is required")
	ErrNonFiniteValue = errors.New("sensor values must be finite numbers")

	ErrInvalidSecret  = errors.New("invalid device secret")
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidToken   = errors.New("invalid token")

	errMissingPayload = errors.New("trigger event has no payload")
)
