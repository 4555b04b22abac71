package domain

import "time"

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusConfirmed, ReservationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s ReservationStatus) String() string {
	return string(s)
}

// Reservation represents one seat held by a user for an event
type Reservation struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	EventID     string            `json:"event_id"`
	Status      ReservationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`

	// Event snapshot for listing without a second query
	EventTitle    string    `json:"event_title,omitempty"`
	EventStartsAt time.Time `json:"event_starts_at,omitempty"`
}

// IsConfirmed reports whether the reservation currently holds a seat
func (r *Reservation) IsConfirmed() bool {
	return r.Status == ReservationStatusConfirmed
}

// BelongsTo reports whether the reservation is owned by the given user
func (r *Reservation) BelongsTo(userID string) bool {
	return r.UserID == userID
}
