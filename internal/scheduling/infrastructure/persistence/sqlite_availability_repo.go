package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// SQLiteAvailabilityRepository implements the availability store on SQLite
// for local mode.
type SQLiteAvailabilityRepository struct {
	db *sql.DB
}

// NewSQLiteAvailabilityRepository creates a new SQLite availability repository.
func NewSQLiteAvailabilityRepository(db *sql.DB) *SQLiteAvailabilityRepository {
	return &SQLiteAvailabilityRepository{db: db}
}

// Save upserts an availability window.
func (r *SQLiteAvailabilityRepository) Save(ctx context.Context, window *domain.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (
			id, tutor_id, kind, weekday, local_start, local_end, timezone,
			effective_from, effective_until, start_at, end_at, blocked,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			weekday = excluded.weekday,
			local_start = excluded.local_start,
			local_end = excluded.local_end,
			timezone = excluded.timezone,
			effective_from = excluded.effective_from,
			effective_until = excluded.effective_until,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			blocked = excluded.blocked,
			updated_at = excluded.updated_at
	`

	var (
		weekday                        *int
		localStart, localEnd, timezone *string
		effectiveFrom, effectiveUntil  *string
		startAt, endAt                 *string
	)

	switch window.Kind() {
	case domain.WindowKindRecurring:
		rule := window.Rule()
		wd := int(rule.Weekday)
		weekday = &wd
		localStart = &rule.LocalStart
		localEnd = &rule.LocalEnd
		timezone = &rule.Timezone
		from := sqliteTime(rule.EffectiveFrom)
		effectiveFrom = &from
		if rule.EffectiveUntil != nil {
			until := sqliteTime(*rule.EffectiveUntil)
			effectiveUntil = &until
		}
	case domain.WindowKindOneOff:
		start := sqliteTime(window.OneOff().Start())
		end := sqliteTime(window.OneOff().End())
		startAt = &start
		endAt = &end
	}

	blocked := 0
	if window.IsBlocked() {
		blocked = 1
	}

	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		window.ID().String(), window.TutorID().String(), string(window.Kind()),
		weekday, localStart, localEnd, timezone,
		effectiveFrom, effectiveUntil, startAt, endAt, blocked,
		sqliteTime(window.CreatedAt()), sqliteTime(window.UpdatedAt()),
	)
	return err
}

// FindByID retrieves an availability window by its ID.
func (r *SQLiteAvailabilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilityWindow, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	row := exec.QueryRowContext(ctx, sqliteAvailabilitySelect+` WHERE id = ?`, id.String())

	window, err := scanSQLiteAvailability(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWindowNotFound
		}
		return nil, err
	}
	return window, nil
}

// ListByTutor returns all availability windows for a tutor.
func (r *SQLiteAvailabilityRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*domain.AvailabilityWindow, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, sqliteAvailabilitySelect+` WHERE tutor_id = ? ORDER BY created_at`, tutorID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		window, err := scanSQLiteAvailability(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, rows.Err()
}

// Delete removes an availability window. Deleting a missing window is not an error.
func (r *SQLiteAvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := exec.ExecContext(ctx, `DELETE FROM availability_windows WHERE id = ?`, id.String())
	return err
}

const sqliteAvailabilitySelect = `
	SELECT id, tutor_id, kind, weekday, local_start, local_end, timezone,
		effective_from, effective_until, start_at, end_at, blocked,
		created_at, updated_at
	FROM availability_windows`

func scanSQLiteAvailability(row rowScanner) (*domain.AvailabilityWindow, error) {
	var (
		idStr, tutorStr, kindStr       string
		weekday                        sql.NullInt64
		localStart, localEnd, timezone sql.NullString
		effectiveFrom, effectiveUntil  sql.NullString
		startStr, endStr               sql.NullString
		blocked                        int
		createdStr, updatedStr         string
	)

	err := row.Scan(&idStr, &tutorStr, &kindStr,
		&weekday, &localStart, &localEnd, &timezone,
		&effectiveFrom, &effectiveUntil, &startStr, &endStr, &blocked,
		&createdStr, &updatedStr)
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
	createdAt, err := parseSQLiteTime(createdStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseSQLiteTime(updatedStr)
	if err != nil {
		return nil, err
	}

	kind := domain.WindowKind(kindStr)

	var rule domain.RecurringRule
	var oneOff domain.TimeRange

	switch kind {
	case domain.WindowKindRecurring:
		from, err := parseSQLiteTime(effectiveFrom.String)
		if err != nil {
			return nil, err
		}
		rule = domain.RecurringRule{
			Weekday:       time.Weekday(weekday.Int64),
			LocalStart:    localStart.String,
			LocalEnd:      localEnd.String,
			Timezone:      timezone.String,
			EffectiveFrom: from,
		}
		if effectiveUntil.Valid {
			until, err := parseSQLiteTime(effectiveUntil.String)
			if err != nil {
				return nil, err
			}
			rule.EffectiveUntil = &until
		}
	case domain.WindowKindOneOff:
		startAt, err := parseSQLiteTime(startStr.String)
		if err != nil {
			return nil, err
		}
		endAt, err := parseSQLiteTime(endStr.String)
		if err != nil {
			return nil, err
		}
		oneOff, err = domain.NewTimeRange(startAt, endAt)
		if err != nil {
			return nil, err
		}
	}

	return domain.RehydrateAvailabilityWindow(
		id, tutorID, kind, rule, oneOff, blocked == 1, createdAt, updatedAt,
	), nil
}
