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
)

// PostgresReservationRepository implements ReservationRepository using
// PostgreSQL with pgxpool. Seat accounting relies on a row lock on the
// event: every writer takes `FOR UPDATE` on the event row, so decrements
// are serialized and the available_seats check cannot race.
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

// Reserve atomically claims one seat for the user on the event
func (r *PostgresReservationRepository) Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.reserve")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", params.UserID),
		attribute.String("event_id", params.EventID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setLockTimeout(ctx, tx, params.LockTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Lock the event row. The EXISTS flag rides along so the duplicate
	// check happens under the same lock as the seat check.
	lockQuery := `
		SELECT
			e.title, e.starts_at, e.capacity, e.available_seats, e.status,
			EXISTS (
				SELECT 1 FROM reservations r
				WHERE r.event_id = e.id AND r.user_id = $2 AND r.status = 'confirmed'
			) AS already_booked
		FROM events e
		WHERE e.id = $1
		FOR UPDATE OF e
	`

	var (
		title          string
		startsAt       time.Time
		capacity       int
		availableSeats int
		status         string
		alreadyBooked  bool
	)
	err = tx.QueryRow(ctx, lockQuery, params.EventID, params.UserID).Scan(
		&title, &startsAt, &capacity, &availableSeats, &status, &alreadyBooked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "event not found")
			return nil, domain.ErrEventNotFound
		}
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	// Validation order matters: state errors before the duplicate check,
	// the duplicate check before the capacity check.
	if status != domain.EventStatusActive.String() {
		span.SetStatus(codes.Error, "event not active")
		return nil, domain.ErrEventNotActive
	}
	if !startsAt.After(params.Now) {
		span.SetStatus(codes.Error, "event started")
		return nil, domain.ErrEventStarted
	}
	if alreadyBooked {
		span.SetStatus(codes.Error, "already booked")
		return nil, domain.ErrAlreadyBooked
	}
	if availableSeats <= 0 {
		span.SetStatus(codes.Error, "event full")
		return nil, domain.ErrEventFull
	}

	// Conditional decrement. The WHERE guard means the counter can never
	// go negative even if the lock discipline is ever broken.
	decrement := `
		UPDATE events
		SET available_seats = available_seats - 1, updated_at = $2
		WHERE id = $1 AND available_seats > 0
	`
	result, err := tx.Exec(ctx, decrement, params.EventID, params.Now)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to decrement seats: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "event full")
		return nil, domain.ErrEventFull
	}

	reservation := &domain.Reservation{
		ID:            uuid.New().String(),
		UserID:        params.UserID,
		EventID:       params.EventID,
		Status:        domain.ReservationStatusConfirmed,
		CreatedAt:     params.Now,
		EventTitle:    title,
		EventStartsAt: startsAt,
	}

	insert := `
		INSERT INTO reservations (id, user_id, event_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, insert,
		reservation.ID,
		reservation.UserID,
		reservation.EventID,
		reservation.Status.String(),
		reservation.CreatedAt,
	)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to insert reservation: %w", err)
	}

	contact, err := fetchContact(ctx, tx, params.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	span.SetAttributes(attribute.String("reservation_id", reservation.ID))
	span.SetStatus(codes.Ok, "")
	return &ReserveResult{Reservation: reservation, Contact: contact}, nil
}

// Cancel releases the user's confirmed reservation and returns the seat
func (r *PostgresReservationRepository) Cancel(ctx context.Context, params CancelParams) (*CancelResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.cancel")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", params.ReservationID),
		attribute.String("user_id", params.UserID),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := setLockTimeout(ctx, tx, params.LockTimeout); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Lock reservation and event together so the seat return and the
	// status flip are one atomic step. Ownership and confirmed status are
	// part of the WHERE: anything else looks like not-found to the caller.
	lockQuery := `
		SELECT r.event_id, r.created_at, e.title, e.starts_at, u.email, u.name
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1 AND r.user_id = $2 AND r.status = 'confirmed'
		FOR UPDATE OF r, e
	`

	var (
		eventID   string
		createdAt time.Time
		title     string
		startsAt  time.Time
		email     string
		name      string
	)
	err = tx.QueryRow(ctx, lockQuery, params.ReservationID, params.UserID).Scan(
		&eventID, &createdAt, &title, &startsAt, &email, &name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrReservationNotFound
		}
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock reservation: %w", err)
	}

	if !startsAt.After(params.Now) {
		span.SetStatus(codes.Error, "event started")
		return nil, domain.ErrEventStarted
	}

	_, err = tx.Exec(ctx, `
		UPDATE reservations SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1
	`, params.ReservationID, params.Now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	// LEAST keeps the counter inside capacity even if the row was ever
	// repaired by hand.
	_, err = tx.Exec(ctx, `
		UPDATE events
		SET available_seats = LEAST(capacity, available_seats + 1), updated_at = $2
		WHERE id = $1
	`, eventID, params.Now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to return seat: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if mapped := mapPgError(err); mapped != nil {
			span.SetStatus(codes.Error, mapped.Error())
			return nil, mapped
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	cancelledAt := params.Now
	reservation := &domain.Reservation{
		ID:            params.ReservationID,
		UserID:        params.UserID,
		EventID:       eventID,
		Status:        domain.ReservationStatusCancelled,
		CreatedAt:     createdAt,
		CancelledAt:   &cancelledAt,
		EventTitle:    title,
		EventStartsAt: startsAt,
	}

	span.SetStatus(codes.Ok, "")
	return &CancelResult{
		Reservation: reservation,
		Contact:     &domain.Contact{UserID: params.UserID, Email: email, Name: name},
	}, nil
}

// ListByUser returns the user's reservations with an event snapshot
func (r *PostgresReservationRepository) ListByUser(ctx context.Context, userID string, filter ListFilter, now time.Time, limit int) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.list_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("filter", string(filter)),
		attribute.Int("limit", limit),
	)

	query := `
		SELECT r.id, r.user_id, r.event_id, r.status, r.created_at, r.cancelled_at,
			e.title, e.starts_at
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
	`
	args := []any{userID}

	switch filter {
	case ListFilterUpcoming:
		query += ` AND e.starts_at > $2 ORDER BY e.starts_at ASC LIMIT $3`
		args = append(args, now, limit)
	case ListFilterPast:
		query += ` AND e.starts_at <= $2 ORDER BY e.starts_at DESC LIMIT $3`
		args = append(args, now, limit)
	default:
		query += ` ORDER BY e.starts_at DESC LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation := &domain.Reservation{}
		var status string
		var cancelledAt *time.Time
		err := rows.Scan(
			&reservation.ID,
			&reservation.UserID,
			&reservation.EventID,
			&status,
			&reservation.CreatedAt,
			&cancelledAt,
			&reservation.EventTitle,
			&reservation.EventStartsAt,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservation.Status = domain.ReservationStatus(status)
		reservation.CancelledAt = cancelledAt
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

// setLockTimeout bounds lock waits for the current transaction. Postgres
// does not allow bind parameters in SET, so the duration is formatted in.
func setLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds()))
	if err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// fetchContact reads the notification projection for a user inside the
// given transaction
func fetchContact(ctx context.Context, tx pgx.Tx, userID string) (*domain.Contact, error) {
	contact := &domain.Contact{UserID: userID}
	err := tx.QueryRow(ctx, `SELECT email, name FROM users WHERE id = $1`, userID).
		Scan(&contact.Email, &contact.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidUserID
		}
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return contact, nil
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
