package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)

	tests := []struct {
		name        string
		organizerID string
		title       string
		startsAt    time.Time
		capacity    int
		wantErr     error
	}{
		{
			name:        "valid event",
			organizerID: "org-1",
			title:       "Go Conference",
			startsAt:    future,
			capacity:    100,
		},
		{
			name:        "missing organizer",
			organizerID: "",
			title:       "Go Conference",
			startsAt:    future,
			capacity:    100,
			wantErr:     ErrInvalidUserID,
		},
		{
			name:        "title too short after trim",
			organizerID: "org-1",
			title:       "  ab  ",
			startsAt:    future,
			capacity:    100,
			wantErr:     ErrInvalidTitle,
		},
		{
			name:        "date in the past",
			organizerID: "org-1",
			title:       "Go Conference",
			startsAt:    now.Add(-time.Hour),
			capacity:    100,
			wantErr:     ErrInvalidDate,
		},
		{
			name:        "date exactly now",
			organizerID: "org-1",
			title:       "Go Conference",
			startsAt:    now,
			capacity:    100,
			wantErr:     ErrInvalidDate,
		},
		{
			name:        "zero capacity",
			organizerID: "org-1",
			title:       "Go Conference",
			startsAt:    future,
			capacity:    0,
			wantErr:     ErrInvalidCapacity,
		},
		{
			name:        "negative capacity",
			organizerID: "org-1",
			title:       "Go Conference",
			startsAt:    future,
			capacity:    -5,
			wantErr:     ErrInvalidCapacity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := NewEvent(tt.organizerID, tt.title, "desc", tt.startsAt, tt.capacity, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, ev)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, EventStatusActive, ev.Status)
			assert.Equal(t, tt.capacity, ev.AvailableSeats)
			assert.Equal(t, "Go Conference", ev.Title)
		})
	}
}

func TestEventStateHelpers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ev := &Event{
		Status:         EventStatusActive,
		StartsAt:       now.Add(time.Hour),
		Capacity:       10,
		AvailableSeats: 1,
	}
	assert.True(t, ev.IsActive())
	assert.False(t, ev.IsPast(now))
	assert.True(t, ev.HasAvailability())

	ev.Status = EventStatusCancelled
	assert.False(t, ev.IsActive())

	ev.StartsAt = now
	assert.True(t, ev.IsPast(now), "event starting exactly now is no longer bookable")

	ev.AvailableSeats = 0
	assert.False(t, ev.HasAvailability())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, EventStatusActive.IsValid())
	assert.True(t, EventStatusCancelled.IsValid())
	assert.False(t, EventStatus("draft").IsValid())

	assert.True(t, ReservationStatusConfirmed.IsValid())
	assert.True(t, ReservationStatusCancelled.IsValid())
	assert.False(t, ReservationStatus("pending").IsValid())
}
