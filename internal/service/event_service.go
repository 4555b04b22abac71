package service

import (
	"context"
	"fmt"
	"time"

	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/internal/dto"
	"github.com/seatsurge/eventbooking/internal/metrics"
	"github.com/seatsurge/eventbooking/internal/repository"
	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventService defines the event lifecycle business logic
type EventService interface {
	// CreateEvent creates an active event owned by the organizer.
	CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent returns one event.
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListUpcomingEvents returns active, future-dated events.
	ListUpcomingEvents(ctx context.Context) (*dto.EventListResponse, error)

	// GetOrganizerEvents returns the organizer's events.
	GetOrganizerEvents(ctx context.Context, organizerID string) (*dto.EventListResponse, error)

	// CancelEvent cancels the event and cascades to every confirmed
	// reservation, notifying each holder best-effort.
	CancelEvent(ctx context.Context, eventID string) (*dto.CancelEventResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo   repository.EventRepository
	cache       AvailabilityCache
	notifier    Notifier
	lockTimeout time.Duration
	listLimit   int
}

// EventServiceConfig contains configuration for the event service
type EventServiceConfig struct {
	LockTimeout time.Duration
	ListLimit   int
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	cache AvailabilityCache,
	notifier Notifier,
	cfg *EventServiceConfig,
) EventService {
	lockTimeout := 3 * time.Second
	listLimit := 100
	if cfg != nil {
		if cfg.LockTimeout > 0 {
			lockTimeout = cfg.LockTimeout
		}
		if cfg.ListLimit > 0 {
			listLimit = cfg.ListLimit
		}
	}
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &eventService{
		eventRepo:   eventRepo,
		cache:       cache,
		notifier:    notifier,
		lockTimeout: lockTimeout,
		listLimit:   listLimit,
	}
}

// CreateEvent creates an active event owned by the organizer
func (s *eventService) CreateEvent(ctx context.Context, organizerID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid title")
		return nil, domain.ErrInvalidTitle
	}

	span.SetAttributes(
		attribute.String("organizer_id", organizerID),
		attribute.Int("capacity", req.Capacity),
	)

	event, err := domain.NewEvent(organizerID, req.Title, req.Description, req.StartsAt, req.Capacity, time.Now())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordEventCreated(ctx)

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// GetEvent returns one event
func (s *eventService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

// ListUpcomingEvents returns active, future-dated events
func (s *eventService) ListUpcomingEvents(ctx context.Context) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_upcoming")
	defer span.End()

	events, err := s.eventRepo.ListUpcoming(ctx, time.Now(), s.listLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return &dto.EventListResponse{
		Data:  dto.EventsFromDomain(events),
		Count: len(events),
	}, nil
}

// GetOrganizerEvents returns the organizer's events
func (s *eventService) GetOrganizerEvents(ctx context.Context, organizerID string) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list_by_organizer")
	defer span.End()

	if organizerID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(attribute.String("organizer_id", organizerID))

	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID, s.listLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return &dto.EventListResponse{
		Data:  dto.EventsFromDomain(events),
		Count: len(events),
	}, nil
}

// CancelEvent cancels the event and cascades to every confirmed
// reservation
func (s *eventService) CancelEvent(ctx context.Context, eventID string) (*dto.CancelEventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.cancel")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := s.eventRepo.CancelWithCascade(ctx, repository.CascadeParams{
		EventID:     eventID,
		Now:         time.Now(),
		LockTimeout: s.lockTimeout,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.cache.Invalidate(ctx, eventID)
	metrics.RecordEventCancelled(ctx, eventID, len(result.Cancelled))

	// Fan out one notification per affected holder after commit. Each send
	// is independent and best-effort.
	title := result.Event.Title
	cancelled := result.Cancelled
	go func() {
		for _, c := range cancelled {
			s.notifier.Send(context.Background(), c.Contact,
				fmt.Sprintf("Event cancelled: %s", title),
				fmt.Sprintf("The event %q has been cancelled. Your reservation is void.", title),
			)
		}
	}()

	span.AddEvent("event_cancelled", trace.WithAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("cascade_size", len(cancelled)),
	))
	span.SetStatus(codes.Ok, "")
	return &dto.CancelEventResponse{
		EventID:               eventID,
		Status:                result.Event.Status.String(),
		CancelledReservations: len(cancelled),
		Message:               "Event cancelled, all reservations released",
	}, nil
}
