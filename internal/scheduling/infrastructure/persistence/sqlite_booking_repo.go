package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// SQLiteBookingRepository implements the booking ledger on SQLite for local
// mode. SQLite has no exclusion constraints, so Append re-checks for an
// overlapping scheduled booking inside the same transaction as the insert;
// SQLite serializes write transactions, which makes the check-then-insert
// pair atomic.
type SQLiteBookingRepository struct {
	db *sql.DB
}

// NewSQLiteBookingRepository creates a new SQLite booking repository.
func NewSQLiteBookingRepository(db *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{db: db}
}

// Append inserts a new scheduled booking, failing when a scheduled booking
// for the same tutor overlaps the requested range.
func (r *SQLiteBookingRepository) Append(ctx context.Context, booking *domain.Booking) error {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return r.appendInTx(ctx, info.Tx, booking)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.appendInTx(ctx, tx, booking); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteBookingRepository) appendInTx(ctx context.Context, tx *sql.Tx, booking *domain.Booking) error {
	var conflicts int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE tutor_id = ? AND status = 'scheduled' AND start_at < ? AND end_at > ?
	`,
		booking.TutorID().String(),
		sqliteTime(booking.TimeRange().End()),
		sqliteTime(booking.TimeRange().Start()),
	).Scan(&conflicts)
	if err != nil {
		return err
	}
	if conflicts > 0 {
		return domain.ErrStorageConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID().String(),
		booking.TutorID().String(),
		booking.StudentID().String(),
		sqliteTime(booking.TimeRange().Start()),
		sqliteTime(booking.TimeRange().End()),
		booking.Status().String(),
		booking.Version(),
		sqliteTime(booking.CreatedAt()),
		sqliteTime(booking.UpdatedAt()),
	)
	return err
}

// FindByID retrieves a booking by its ID.
func (r *SQLiteBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	row := exec.QueryRowContext(ctx, `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE id = ?
	`, id.String())

	booking, err := scanSQLiteBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// BookingsFor returns the tutor's scheduled bookings overlapping the range.
func (r *SQLiteBookingRepository) BookingsFor(ctx context.Context, tutorID uuid.UUID, timeRange domain.TimeRange) ([]*domain.Booking, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE tutor_id = ? AND status = 'scheduled' AND start_at < ? AND end_at > ?
		ORDER BY start_at
	`, tutorID.String(), sqliteTime(timeRange.End()), sqliteTime(timeRange.Start()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteBookings(rows)
}

// DueForCompletion returns scheduled bookings whose end has passed.
func (r *SQLiteBookingRepository) DueForCompletion(ctx context.Context, limit int) ([]*domain.Booking, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, tutor_id, student_id, start_at, end_at, status, version, created_at, updated_at
		FROM bookings
		WHERE status = 'scheduled' AND end_at <= ?
		ORDER BY end_at
		LIMIT ?
	`, sqliteTime(time.Now().UTC()), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteBookings(rows)
}

// Transition moves a scheduled booking to a terminal status with a
// compare-and-swap on (id, version).
func (r *SQLiteBookingRepository) Transition(ctx context.Context, id uuid.UUID, expectedVersion int64, status domain.BookingStatus) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ? AND status = 'scheduled'
	`, status.String(), sqliteTime(time.Now().UTC()), id.String(), expectedVersion)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var currentStatus string
	var currentVersion int64
	err = exec.QueryRowContext(ctx, `SELECT status, version FROM bookings WHERE id = ?`, id.String()).
		Scan(&currentStatus, &currentVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBooking(row rowScanner) (*domain.Booking, error) {
	var (
		idStr, tutorStr, studentStr string
		startStr, endStr            string
		status                      string
		version                     int64
		createdStr, updatedStr      string
	)

	err := row.Scan(&idStr, &tutorStr, &studentStr, &startStr, &endStr,
		&status, &version, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	tutorID, err := uuid.Parse(tutorStr)
	if err != nil {
		return nil, err
	}
	studentID, err := uuid.Parse(studentStr)
	if err != nil {
		return nil, err
	}

	startAt, err := parseSQLiteTime(startStr)
	if err != nil {
		return nil, err
	}
	endAt, err := parseSQLiteTime(endStr)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseSQLiteTime(createdStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseSQLiteTime(updatedStr)
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

func collectSQLiteBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// sqliteTimeLayout is fixed width so lexicographic comparison in SQL matches
// chronological order. RFC3339Nano trims trailing zeros and would not.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
