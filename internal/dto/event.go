package dto

import (
	"time"

	"github.com/seatsurge/eventbooking/internal/domain"
)

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID             string    `json:"id"`
	OrganizerID    string    `json:"organizer_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	StartsAt       time.Time `json:"starts_at"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// AvailabilityResponse represents a seat snapshot for an event
type AvailabilityResponse struct {
	EventID        string    `json:"event_id"`
	Capacity       int       `json:"capacity"`
	AvailableSeats int       `json:"available_seats"`
	Reserved       int       `json:"reserved"`
	Status         string    `json:"status"`
	AsOf           time.Time `json:"as_of"`
}

// CancelEventResponse represents a response after cancelling an event
type CancelEventResponse struct {
	EventID               string `json:"event_id"`
	Status                string `json:"status"`
	CancelledReservations int    `json:"cancelled_reservations"`
	Message               string `json:"message"`
}

// EventListResponse wraps an event listing
type EventListResponse struct {
	Data  []*EventResponse `json:"data"`
	Count int              `json:"count"`
}

// EventFromDomain converts a domain Event to a response
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		OrganizerID:    e.OrganizerID,
		Title:          e.Title,
		Description:    e.Description,
		StartsAt:       e.StartsAt,
		Capacity:       e.Capacity,
		AvailableSeats: e.AvailableSeats,
		Status:         e.Status.String(),
		CreatedAt:      e.CreatedAt,
	}
}

// EventsFromDomain converts a slice of events
func EventsFromDomain(events []*domain.Event) []*EventResponse {
	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = EventFromDomain(e)
	}
	return responses
}

// AvailabilityFromDomain converts a domain Availability snapshot
func AvailabilityFromDomain(a *domain.Availability) *AvailabilityResponse {
	return &AvailabilityResponse{
		EventID:        a.EventID,
		Capacity:       a.Capacity,
		AvailableSeats: a.AvailableSeats,
		Reserved:       a.Reserved,
		Status:         a.Status,
		AsOf:           a.AsOf,
	}
}
