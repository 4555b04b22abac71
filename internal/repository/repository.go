package repository

import (
	"context"
	"time"

	"github.com/seatsurge/eventbooking/internal/domain"
)

// ReserveParams carries the inputs for a seat reservation
type ReserveParams struct {
	UserID      string
	EventID     string
	Now         time.Time
	LockTimeout time.Duration
}

// ReserveResult is the committed reservation plus the contact projection
// used for the post-commit confirmation notification
type ReserveResult struct {
	Reservation *domain.Reservation
	Contact     *domain.Contact
}

// CancelParams carries the inputs for a reservation cancellation
type CancelParams struct {
	ReservationID string
	UserID        string
	Now           time.Time
	LockTimeout   time.Duration
}

// CancelResult is the cancelled reservation plus the contact projection
// used for the post-commit notification
type CancelResult struct {
	Reservation *domain.Reservation
	Contact     *domain.Contact
}

// ListFilter selects which reservations to return relative to now
type ListFilter string

const (
	ListFilterAll      ListFilter = ""
	ListFilterUpcoming ListFilter = "upcoming"
	ListFilterPast     ListFilter = "past"
)

// CascadeParams carries the inputs for an event cancellation
type CascadeParams struct {
	EventID     string
	Now         time.Time
	LockTimeout time.Duration
}

// CascadeResult describes an event cancellation and every reservation it
// cascaded to, with contacts for the notification fan-out
type CascadeResult struct {
	Event     *domain.Event
	Cancelled []CascadedReservation
}

// CascadedReservation is one reservation swept up by an event cancellation
type CascadedReservation struct {
	ReservationID string
	Contact       domain.Contact
}

// ReservationRepository owns the seat-ledger transactions. Implementations
// map store failures onto the domain error taxonomy.
type ReservationRepository interface {
	// Reserve atomically claims one seat for the user on the event.
	Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error)

	// Cancel releases the user's confirmed reservation and returns the seat.
	Cancel(ctx context.Context, params CancelParams) (*CancelResult, error)

	// ListByUser returns the user's reservations with an event snapshot,
	// ordered by event date.
	ListByUser(ctx context.Context, userID string, filter ListFilter, now time.Time, limit int) ([]*domain.Reservation, error)
}

// EventRepository owns event rows and the cancellation cascade
type EventRepository interface {
	// Create persists a new event and fills in the generated fields.
	Create(ctx context.Context, event *domain.Event) error

	// GetByID returns the event or domain.ErrEventNotFound.
	GetByID(ctx context.Context, id string) (*domain.Event, error)

	// Availability returns the point-in-time seat snapshot.
	Availability(ctx context.Context, id string) (*domain.Availability, error)

	// ListUpcoming returns active, future-dated events ordered by date.
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error)

	// ListByOrganizer returns the organizer's events ordered by date.
	ListByOrganizer(ctx context.Context, organizerID string, limit int) ([]*domain.Event, error)

	// CancelWithCascade cancels the event and every confirmed reservation
	// on it in one transaction, returning the affected contacts.
	CancelWithCascade(ctx context.Context, params CascadeParams) (*CascadeResult, error)
}
