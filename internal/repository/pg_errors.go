package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/seatsurge/eventbooking/internal/domain"
)

// SQLSTATE codes this module maps onto the domain taxonomy
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgLockNotAvailable    = "55P03"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// mapPgError translates driver-level failures into domain errors. Returns
// nil when the error carries no mapping; callers then wrap and surface it
// as an internal error.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		// The only unique constraint a write can trip here is the partial
		// one-confirmed-seat-per-user index.
		return domain.ErrAlreadyBooked
	case pgForeignKeyViolation:
		return domain.ErrInvalidUserID
	case pgLockNotAvailable, pgSerializationFail, pgDeadlockDetected:
		return domain.ErrTransientConflict
	}
	return nil
}
