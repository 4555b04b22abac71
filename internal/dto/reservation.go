package dto

import (
	"time"

	"github.com/seatsurge/eventbooking/internal/domain"
)

// ReserveRequest represents a request to reserve a seat
type ReserveRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	EventID       string     `json:"event_id"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	EventTitle    string     `json:"event_title,omitempty"`
	EventStartsAt time.Time  `json:"event_starts_at,omitempty"`
}

// CancelReservationResponse represents a response after cancelling
type CancelReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// ReservationListResponse wraps a user's reservation listing
type ReservationListResponse struct {
	Data   []*ReservationResponse `json:"data"`
	Filter string                 `json:"filter,omitempty"`
	Count  int                    `json:"count"`
}

// ReservationFromDomain converts a domain Reservation to a response
func ReservationFromDomain(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		EventID:       r.EventID,
		Status:        r.Status.String(),
		CreatedAt:     r.CreatedAt,
		CancelledAt:   r.CancelledAt,
		EventTitle:    r.EventTitle,
		EventStartsAt: r.EventStartsAt,
	}
}

// ReservationsFromDomain converts a slice of reservations
func ReservationsFromDomain(reservations []*domain.Reservation) []*ReservationResponse {
	responses := make([]*ReservationResponse, len(reservations))
	for i, r := range reservations {
		responses[i] = ReservationFromDomain(r)
	}
	return responses
}
