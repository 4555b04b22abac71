package domain

import (
	"strings"
	"time"
)

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusActive, EventStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s EventStatus) String() string {
	return string(s)
}

// Event represents a bookable event with a fixed seat capacity
type Event struct {
	ID             string      `json:"id"`
	OrganizerID    string      `json:"organizer_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	StartsAt       time.Time   `json:"starts_at"`
	Capacity       int         `json:"capacity"`
	AvailableSeats int         `json:"available_seats"`
	Status         EventStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsActive reports whether the event accepts reservations
func (e *Event) IsActive() bool {
	return e.Status == EventStatusActive
}

// IsPast reports whether the event has already started as of now
func (e *Event) IsPast(now time.Time) bool {
	return !e.StartsAt.After(now)
}

// HasAvailability reports whether at least one seat remains
func (e *Event) HasAvailability() bool {
	return e.AvailableSeats > 0
}

// NewEvent validates the creation attributes and builds an active event
// with available seats equal to capacity. The id is assigned by storage.
func NewEvent(organizerID, title, description string, startsAt time.Time, capacity int, now time.Time) (*Event, error) {
	if organizerID == "" {
		return nil, ErrInvalidUserID
	}
	title = strings.TrimSpace(title)
	if len(title) < 3 {
		return nil, ErrInvalidTitle
	}
	if !startsAt.After(now) {
		return nil, ErrInvalidDate
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Event{
		OrganizerID:    organizerID,
		Title:          title,
		Description:    strings.TrimSpace(description),
		StartsAt:       startsAt,
		Capacity:       capacity,
		AvailableSeats: capacity,
		Status:         EventStatusActive,
	}, nil
}

// Availability is a point-in-time seat snapshot for an event, served from
// cache when fresh and from the ledger otherwise.
type Availability struct {
	EventID        string    `json:"event_id"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	Reserved       int       `json:"reserved"`
	Status         string    `json:"status"`
	AsOf           time.Time `json:"as_of"`
}
