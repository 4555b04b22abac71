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

// AvailabilityCache is the seat-snapshot cache the service reads through
type AvailabilityCache interface {
	Get(ctx context.Context, eventID string) (*domain.Availability, bool)
	Set(ctx context.Context, snapshot *domain.Availability)
	Invalidate(ctx context.Context, eventID string)
}

// ReservationService defines the seat reservation business logic
type ReservationService interface {
	// Reserve claims one seat on an event for the user.
	Reserve(ctx context.Context, userID string, req *dto.ReserveRequest) (*dto.ReservationResponse, error)

	// Cancel releases the user's confirmed reservation.
	Cancel(ctx context.Context, reservationID, userID string) (*dto.CancelReservationResponse, error)

	// GetAvailability returns the seat snapshot for an event.
	GetAvailability(ctx context.Context, eventID string) (*dto.AvailabilityResponse, error)

	// GetUserReservations lists the user's reservations.
	GetUserReservations(ctx context.Context, userID, filter string) (*dto.ReservationListResponse, error)
}

// reservationService implements ReservationService
type reservationService struct {
	reservationRepo repository.ReservationRepository
	eventRepo       repository.EventRepository
	cache           AvailabilityCache
	notifier        Notifier
	lockTimeout     time.Duration
	listLimit       int
}

// ReservationServiceConfig contains configuration for the reservation service
type ReservationServiceConfig struct {
	LockTimeout time.Duration
	ListLimit   int
}

// NewReservationService creates a new reservation service
func NewReservationService(
	reservationRepo repository.ReservationRepository,
	eventRepo repository.EventRepository,
	cache AvailabilityCache,
	notifier Notifier,
	cfg *ReservationServiceConfig,
) ReservationService {
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
	return &reservationService{
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		cache:           cache,
		notifier:        notifier,
		lockTimeout:     lockTimeout,
		listLimit:       listLimit,
	}
}

// Reserve claims one seat on an event for the user
func (s *reservationService) Reserve(ctx context.Context, userID string, req *dto.ReserveRequest) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.reserve")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	start := time.Now()
	result, err := s.reservationRepo.Reserve(ctx, repository.ReserveParams{
		UserID:      userID,
		EventID:     req.EventID,
		Now:         start,
		LockTimeout: s.lockTimeout,
	})
	if err != nil {
		metrics.RecordRejection(ctx, req.EventID, rejectionReason(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.cache.Invalidate(ctx, req.EventID)
	metrics.RecordReservation(ctx, req.EventID, time.Since(start).Seconds())

	reservation := result.Reservation

	// Notify after commit; the sink is best-effort and must never fail the
	// reservation.
	if result.Contact != nil {
		contact := *result.Contact
		title := reservation.EventTitle
		startsAt := reservation.EventStartsAt
		go func() {
			s.notifier.Send(context.Background(), contact,
				fmt.Sprintf("Booking confirmed: %s", title),
				fmt.Sprintf("Your seat for %q on %s is confirmed.", title, startsAt.Format(time.RFC1123)),
			)
		}()
	}

	span.AddEvent("reservation_created", trace.WithAttributes(
		attribute.String("reservation_id", reservation.ID),
		attribute.String("event_id", reservation.EventID),
	))
	span.SetAttributes(attribute.String("reservation_id", reservation.ID))
	span.SetStatus(codes.Ok, "")
	return dto.ReservationFromDomain(reservation), nil
}

// Cancel releases the user's confirmed reservation
func (s *reservationService) Cancel(ctx context.Context, reservationID, userID string) (*dto.CancelReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()

	if reservationID == "" {
		span.SetStatus(codes.Error, "invalid reservation_id")
		return nil, domain.ErrInvalidReservationID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("reservation_id", reservationID),
		attribute.String("user_id", userID),
	)

	result, err := s.reservationRepo.Cancel(ctx, repository.CancelParams{
		ReservationID: reservationID,
		UserID:        userID,
		Now:           time.Now(),
		LockTimeout:   s.lockTimeout,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reservation := result.Reservation
	s.cache.Invalidate(ctx, reservation.EventID)
	metrics.RecordCancellation(ctx, reservation.EventID)

	if result.Contact != nil {
		contact := *result.Contact
		title := reservation.EventTitle
		go func() {
			s.notifier.Send(context.Background(), contact,
				fmt.Sprintf("Booking cancelled: %s", title),
				fmt.Sprintf("Your reservation for %q has been cancelled and the seat released.", title),
			)
		}()
	}

	span.AddEvent("reservation_cancelled", trace.WithAttributes(
		attribute.String("reservation_id", reservationID),
		attribute.String("event_id", reservation.EventID),
	))
	span.SetStatus(codes.Ok, "")
	return &dto.CancelReservationResponse{
		ReservationID: reservationID,
		Status:        reservation.Status.String(),
		Message:       "Reservation cancelled successfully",
	}, nil
}

// GetAvailability returns the seat snapshot, served from cache when fresh
func (s *reservationService) GetAvailability(ctx context.Context, eventID string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get_availability")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(attribute.String("event_id", eventID))

	if snapshot, ok := s.cache.Get(ctx, eventID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		span.SetStatus(codes.Ok, "")
		return dto.AvailabilityFromDomain(snapshot), nil
	}

	snapshot, err := s.eventRepo.Availability(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.cache.Set(ctx, snapshot)

	span.SetAttributes(attribute.Bool("cache.hit", false))
	span.SetStatus(codes.Ok, "")
	return dto.AvailabilityFromDomain(snapshot), nil
}

// GetUserReservations lists the user's reservations
func (s *reservationService) GetUserReservations(ctx context.Context, userID, filter string) (*dto.ReservationListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list_user")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	listFilter := repository.ListFilter(filter)
	switch listFilter {
	case repository.ListFilterAll, repository.ListFilterUpcoming, repository.ListFilterPast:
	default:
		listFilter = repository.ListFilterAll
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("filter", string(listFilter)),
	)

	reservations, err := s.reservationRepo.ListByUser(ctx, userID, listFilter, time.Now(), s.listLimit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return &dto.ReservationListResponse{
		Data:   dto.ReservationsFromDomain(reservations),
		Filter: string(listFilter),
		Count:  len(reservations),
	}, nil
}

// rejectionReason labels a reserve failure for metrics
func rejectionReason(err error) string {
	switch {
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsConflict(err):
		return "already_booked"
	case domain.IsInvalidState(err):
		return "invalid_state"
	case domain.IsTransient(err):
		return "contention"
	default:
		return "internal"
	}
}
