package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/dto"
	"github.com/seatsurge/eventbooking/internal/repository"
)

func TestEventService_CreateEvent(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name        string
		organizerID string
		req         *dto.CreateEventRequest
		wantErr     error
	}{
		{
			name:        "successful creation",
			organizerID: "org-001",
			req: &dto.CreateEventRequest{
				Title:    "Spring Meetup",
				StartsAt: future,
				Capacity: 50,
			},
		},
		{
			name:        "title too short",
			organizerID: "org-001",
			req: &dto.CreateEventRequest{
				Title:    "ab",
				StartsAt: future,
				Capacity: 50,
			},
			wantErr: domain.ErrInvalidTitle,
		},
		{
			name:        "past date",
			organizerID: "org-001",
			req: &dto.CreateEventRequest{
				Title:    "Spring Meetup",
				StartsAt: time.Now().Add(-time.Hour),
				Capacity: 50,
			},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name:        "zero capacity",
			organizerID: "org-001",
			req: &dto.CreateEventRequest{
				Title:    "Spring Meetup",
				StartsAt: future,
				Capacity: 0,
			},
			wantErr: domain.ErrInvalidCapacity,
		},
		{
			name:        "missing organizer",
			organizerID: "",
			req: &dto.CreateEventRequest{
				Title:    "Spring Meetup",
				StartsAt: future,
				Capacity: 50,
			},
			wantErr: domain.ErrInvalidUserID,
		},
		{
			name:        "nil request",
			organizerID: "org-001",
			req:         nil,
			wantErr:     domain.ErrInvalidTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEventService(&MockEventRepository{}, NewMockCache(), NewNoopNotifier(), nil)

			resp, err := svc.CreateEvent(context.Background(), tt.organizerID, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateEvent() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateEvent() unexpected error: %v", err)
			}
			if resp.Status != domain.EventStatusActive.String() {
				t.Errorf("CreateEvent() status = %s, want active", resp.Status)
			}
			if resp.AvailableSeats != tt.req.Capacity {
				t.Errorf("AvailableSeats = %d, want %d", resp.AvailableSeats, tt.req.Capacity)
			}
		})
	}
}

func TestEventService_CancelEvent(t *testing.T) {
	t.Run("cascade notifies every holder", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			CancelWithCascadeFunc: func(ctx context.Context, params repository.CascadeParams) (*repository.CascadeResult, error) {
				return &repository.CascadeResult{
					Event: &domain.Event{
						ID:     params.EventID,
						Title:  "Doomed Gig",
						Status: domain.EventStatusCancelled,
					},
					Cancelled: []repository.CascadedReservation{
						{ReservationID: "res-1", Contact: domain.Contact{UserID: "u1", Email: "a@test.local"}},
						{ReservationID: "res-2", Contact: domain.Contact{UserID: "u2", Email: "b@test.local"}},
						{ReservationID: "res-3", Contact: domain.Contact{UserID: "u3", Email: "c@test.local"}},
					},
				}, nil
			},
		}
		cache := NewMockCache()
		notifier := NewRecordingNotifier()

		svc := NewEventService(eventRepo, cache, notifier, nil)

		resp, err := svc.CancelEvent(context.Background(), "event-001")
		if err != nil {
			t.Fatalf("CancelEvent() unexpected error: %v", err)
		}
		if resp.CancelledReservations != 3 {
			t.Errorf("CancelledReservations = %d, want 3", resp.CancelledReservations)
		}
		if resp.Status != domain.EventStatusCancelled.String() {
			t.Errorf("Status = %s, want cancelled", resp.Status)
		}

		sent := waitForSends(t, notifier, 3)
		sort.Strings(sent)
		want := []string{
			"a@test.local|Event cancelled: Doomed Gig",
			"b@test.local|Event cancelled: Doomed Gig",
			"c@test.local|Event cancelled: Doomed Gig",
		}
		for i := range want {
			if sent[i] != want[i] {
				t.Errorf("notification[%d] = %q, want %q", i, sent[i], want[i])
			}
		}

		inv := cache.Invalidations()
		if len(inv) != 1 || inv[0] != "event-001" {
			t.Errorf("cache invalidations = %v, want [event-001]", inv)
		}
	})

	t.Run("notifier failure does not fail the cancellation", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			CancelWithCascadeFunc: func(ctx context.Context, params repository.CascadeParams) (*repository.CascadeResult, error) {
				return &repository.CascadeResult{
					Event: &domain.Event{ID: params.EventID, Title: "Doomed Gig", Status: domain.EventStatusCancelled},
					Cancelled: []repository.CascadedReservation{
						{ReservationID: "res-1", Contact: domain.Contact{UserID: "u1", Email: "a@test.local"}},
					},
				}, nil
			},
		}
		notifier := NewRecordingNotifier()
		notifier.Fail = true

		svc := NewEventService(eventRepo, NewMockCache(), notifier, nil)

		if _, err := svc.CancelEvent(context.Background(), "event-001"); err != nil {
			t.Fatalf("CancelEvent() unexpected error: %v", err)
		}
		waitForSends(t, notifier, 1)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{}, NewMockCache(), NewNoopNotifier(), nil)
		_, err := svc.CancelEvent(context.Background(), "event-999")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("CancelEvent() error = %v, want not found", err)
		}
	})

	t.Run("already cancelled", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			CancelWithCascadeFunc: func(ctx context.Context, params repository.CascadeParams) (*repository.CascadeResult, error) {
				return nil, domain.ErrEventNotActive
			},
		}
		svc := NewEventService(eventRepo, NewMockCache(), NewNoopNotifier(), nil)
		_, err := svc.CancelEvent(context.Background(), "event-001")
		if !errors.Is(err, domain.ErrEventNotActive) {
			t.Errorf("CancelEvent() error = %v, want not active", err)
		}
	})

	t.Run("lock timeout reaches the cascade transaction", func(t *testing.T) {
		var got repository.CascadeParams
		eventRepo := &MockEventRepository{
			CancelWithCascadeFunc: func(ctx context.Context, params repository.CascadeParams) (*repository.CascadeResult, error) {
				got = params
				return &repository.CascadeResult{
					Event: &domain.Event{ID: params.EventID, Title: "Doomed Gig", Status: domain.EventStatusCancelled},
				}, nil
			},
		}
		svc := NewEventService(eventRepo, NewMockCache(), NewNoopNotifier(), &EventServiceConfig{
			LockTimeout: 750 * time.Millisecond,
		})

		if _, err := svc.CancelEvent(context.Background(), "event-001"); err != nil {
			t.Fatalf("CancelEvent() unexpected error: %v", err)
		}
		if got.EventID != "event-001" {
			t.Errorf("EventID = %q, want event-001", got.EventID)
		}
		if got.LockTimeout != 750*time.Millisecond {
			t.Errorf("LockTimeout = %v, want 750ms", got.LockTimeout)
		}
		if got.Now.IsZero() {
			t.Error("Now was not set")
		}
	})

	t.Run("missing event ID", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{}, NewMockCache(), NewNoopNotifier(), nil)
		_, err := svc.CancelEvent(context.Background(), "")
		if !errors.Is(err, domain.ErrInvalidEventID) {
			t.Errorf("CancelEvent() error = %v, want invalid event id", err)
		}
	})
}

func TestEventService_Listings(t *testing.T) {
	events := []*domain.Event{
		{ID: "e1", Title: "First", Status: domain.EventStatusActive},
		{ID: "e2", Title: "Second", Status: domain.EventStatusActive},
	}

	eventRepo := &MockEventRepository{
		ListUpcomingFunc: func(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
			return events, nil
		},
		ListByOrganizerFunc: func(ctx context.Context, organizerID string, limit int) ([]*domain.Event, error) {
			if organizerID != "org-001" {
				return nil, nil
			}
			return events[:1], nil
		},
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Event, error) {
			if id == "e1" {
				return events[0], nil
			}
			return nil, domain.ErrEventNotFound
		},
	}

	svc := NewEventService(eventRepo, NewMockCache(), NewNoopNotifier(), nil)
	ctx := context.Background()

	upcoming, err := svc.ListUpcomingEvents(ctx)
	if err != nil {
		t.Fatalf("ListUpcomingEvents() unexpected error: %v", err)
	}
	if upcoming.Count != 2 {
		t.Errorf("Count = %d, want 2", upcoming.Count)
	}

	mine, err := svc.GetOrganizerEvents(ctx, "org-001")
	if err != nil {
		t.Fatalf("GetOrganizerEvents() unexpected error: %v", err)
	}
	if mine.Count != 1 {
		t.Errorf("Count = %d, want 1", mine.Count)
	}

	if _, err := svc.GetOrganizerEvents(ctx, ""); !errors.Is(err, domain.ErrInvalidUserID) {
		t.Errorf("GetOrganizerEvents() error = %v, want invalid user id", err)
	}

	got, err := svc.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("GetEvent() unexpected error: %v", err)
	}
	if got.Title != "First" {
		t.Errorf("Title = %s, want First", got.Title)
	}

	if _, err := svc.GetEvent(ctx, "e9"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("GetEvent() error = %v, want not found", err)
	}

	if _, err := svc.GetEvent(ctx, ""); !errors.Is(err, domain.ErrInvalidEventID) {
		t.Errorf("GetEvent() error = %v, want invalid event id", err)
	}
}
