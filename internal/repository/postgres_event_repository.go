package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatsurge/eventbooking/internal/domain"
	"github.com/seatsurge/eventbooking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const eventColumns = `
	id, organizer_id, title, description, starts_at,
	capacity, available_seats, status, created_at, updated_at
`

// PostgresEventRepository implements EventRepository using PostgreSQL
// with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Create persists a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("organizer_id", event.OrganizerID),
		attribute.Int("capacity", event.Capacity),
	)

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (
			id, organizer_id, title, description, starts_at,
			capacity, available_seats, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.OrganizerID,
		event.Title,
		event.Description,
		event.StartsAt,
		event.Capacity,
		event.AvailableSeats,
		event.Status.String(),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Availability returns the seat snapshot for an event. This is a plain
// pool read: no lock, safe under concurrent reservations.
func (r *PostgresEventRepository) Availability(ctx context.Context, id string) (*domain.Availability, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.availability")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	query := `SELECT capacity, available_seats, status FROM events WHERE id = $1`

	snapshot := &domain.Availability{EventID: id, AsOf: time.Now()}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&snapshot.Capacity, &snapshot.AvailableSeats, &snapshot.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	snapshot.Reserved = snapshot.Capacity - snapshot.AvailableSeats

	span.SetAttributes(attribute.Int("available_seats", snapshot.AvailableSeats))
	span.SetStatus(codes.Ok, "")
	return snapshot, nil
}

// ListUpcoming returns active, future-dated events ordered by date
func (r *PostgresEventRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_upcoming")
	defer span.End()

	span.SetAttributes(attribute.Int("limit", limit))

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'active' AND starts_at > $1
		ORDER BY starts_at ASC
		LIMIT $2
	`
	return r.queryEvents(ctx, span, query, now, limit)
}

// ListByOrganizer returns the organizer's events ordered by date
func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, organizerID string, limit int) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list_by_organizer")
	defer span.End()

	span.SetAttributes(
		attribute.String("organizer_id", organizerID),
		attribute.Int("limit", limit),
	)

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = $1
		ORDER BY starts_at ASC
		LIMIT $2
	`
	return r.queryEvents(ctx, span, query, organizerID, limit)
}

// CancelWithCascade cancels the event and every confirmed reservation on
// it in one transaction. The seat counter is left untouched: a cancelled
// event sells no seats, and the ledger keeps the final tally.
func (r *PostgresEventRepository) CancelWithCascade(ctx context.Context, params CascadeParams) (*CascadeResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.cancel_with_cascade")
	defer span.End()

	eventID := params.EventID
	now := params.Now
	span.SetAttributes(attribute.String("event_id", eventID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The flip contends for the same event row lock the reserve path
	// holds, so the wait is bounded like every other writer.
	if err := setLockTimeout(ctx, tx, params.LockTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	flip := `
		UPDATE events SET status = 'cancelled', updated_at = $2
		WHERE id = $1 AND status = 'active'
	`
	result, err := tx.Exec(ctx, flip, eventID, now)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to cancel event: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Probe for the precise error
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM events WHERE id = $1`, eventID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return nil, domain.ErrEventNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to check event status: %w", err)
		}
		span.SetStatus(codes.Error, "not active")
		return nil, domain.ErrEventNotActive
	}

	event, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to reload event: %w", err)
	}

	// Collect contacts before the bulk flip so the caller can fan out
	// notifications after commit.
	rows, err := tx.Query(ctx, `
		SELECT r.id, r.user_id, u.email, u.name
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.status = 'confirmed'
	`, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list confirmed reservations: %w", err)
	}

	var cancelled []CascadedReservation
	for rows.Next() {
		var c CascadedReservation
		if err := rows.Scan(&c.ReservationID, &c.Contact.UserID, &c.Contact.Email, &c.Contact.Name); err != nil {
			rows.Close()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		cancelled = append(cancelled, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE reservations SET status = 'cancelled', cancelled_at = $2
		WHERE event_id = $1 AND status = 'confirmed'
	`, eventID, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to cascade cancellations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit cascade: %w", err)
	}

	span.SetAttributes(attribute.Int("cascade_size", len(cancelled)))
	span.SetStatus(codes.Ok, "")
	return &CascadeResult{Event: event, Cancelled: cancelled}, nil
}

func (r *PostgresEventRepository) queryEvents(ctx context.Context, span trace.Span, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// scanEvent scans a single event row
func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var status string
	err := row.Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Description,
		&event.StartsAt,
		&event.Capacity,
		&event.AvailableSeats,
		&status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.Status = domain.EventStatus(status)
	return event, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
