package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// exclusionViolation is the Postgres SQLSTATE raised when an insert hits the
// bookings exclusion constraint.
const exclusionViolation = "23P01"

// PostgresBookingRepository implements the booking ledger on PostgreSQL. The
// no-overlap invariant for scheduled bookings is enforced by an exclusion
// constraint over (tutor_id, tstzrange(start_at, end_at)), so conflicting
// concurrent appends fail atomically inside the database.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgreSQL booking repository.
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Append inserts a new scheduled booking.
func (r *PostgresBookingRepository) Append(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		booking.ID(),
		booking.TutorID(),
		booking.StudentID(),
		booking.TimeRange().Start(),
		booking.TimeRange().End(),
		booking.Status().String(),
		booking.Version(),
		booking.CreatedAt(),
		booking.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
			return domain.ErrStorageConflict
		}
		return err
	}
	return nil
}

// FindByID retrieves a booking by its ID.
func (r *PostgresBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	booking, err := scanBooking(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// BookingsFor returns the tutor's scheduled bookings overlapping the range.
func (r *PostgresBookingRepository) BookingsFor(ctx context.Context, tutorID uuid.UUID, timeRange domain.TimeRange) ([]*domain.Booking, error) {
	query := `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE tutor_id = $1 AND status = 'scheduled' AND start_at < $3 AND end_at > $2
		ORDER BY start_at
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, tutorID, timeRange.Start(), timeRange.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// DueForCompletion returns scheduled bookings whose end has passed.
func (r *PostgresBookingRepository) DueForCompletion(ctx context.Context, limit int) ([]*domain.Booking, error) {
	query := `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE status = 'scheduled' AND end_at <= NOW()
		ORDER BY end_at
		LIMIT $1
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows)
}

// Transition moves a scheduled booking to a terminal status with a
// compare-and-swap on (id, version).
func (r *PostgresBookingRepository) Transition(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND status = 'scheduled'
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, id, expectedVersion, status.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing was updated: look at the current row to report why.
	var currentStatus string
	var currentVersion int64
	err = exec.QueryRow(ctx, `SELECT status, version FROM bookings WHERE id = $1`, id).
		Scan(&currentStatus, &currentVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotFound
		}
		return err
	}

	// A stale version wins over an unreachable status: a caller acting on
	// old state is told to re-read, whatever the row looks like now.
	if currentVersion != expectedVersion {
		return domain.ErrVersionMismatch
	}
	if domain.BookingStatus(currentStatus).IsTerminal() {
		return domain.ErrInvalidTransition
	}
	return domain.ErrVersionMismatch
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		id, tutorID, studentID uuid.UUID
		startAt, endAt         time.Time
		status                 string
		version                int64
		createdAt, updatedAt   time.Time
	)

	err := row.Scan(&id, &tutorID, &studentID, &startAt, &endAt, &status, &version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	timeRange, err := domain.NewTimeRange(startAt, endAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateBooking(id, tutorID, studentID, timeRange,
		domain.BookingStatus(status), version, createdAt, updatedAt), nil
}

func scanBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
