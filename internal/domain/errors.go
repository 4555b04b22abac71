package domain

import "errors"

// Domain errors
var (
	// Not-found errors
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found or not cancellable")

	// Conflict errors
	ErrAlreadyBooked = errors.New("user already holds a confirmed reservation for this event")

	// Invalid-state errors
	ErrEventNotActive = errors.New("event is not active")
	ErrEventStarted   = errors.New("event date has already passed")
	ErrEventFull      = errors.New("event is fully booked")

	// Transient errors, retryable by the caller with backoff
	ErrTransientConflict = errors.New("storage contention, retry the request")

	// Validation errors
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidEventID       = errors.New("invalid event id")
	ErrInvalidReservationID = errors.New("invalid reservation id")
	ErrInvalidTitle         = errors.New("event title must be at least 3 characters")
	ErrInvalidDate          = errors.New("event date must be in the future")
	ErrInvalidCapacity      = errors.New("event capacity must be a positive integer")
)

// IsNotFound reports whether the error maps to a 404-class response
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

// IsConflict reports whether the error maps to a 409-class response
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyBooked)
}

// IsInvalidState reports whether the error maps to a 400-class response
// caused by the current state of the event or reservation
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrEventNotActive) ||
		errors.Is(err, ErrEventStarted) ||
		errors.Is(err, ErrEventFull)
}

// IsTransient reports whether the error is retryable (503-class):
// lock-wait timeouts and serialization failures from the store
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientConflict)
}

// IsValidation reports whether the error is a request validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidReservationID) ||
		errors.Is(err, ErrInvalidTitle) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidCapacity)
}
