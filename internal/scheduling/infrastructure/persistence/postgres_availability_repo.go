package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// PostgresAvailabilityRepository implements the availability store on
// PostgreSQL. Recurring rules and one-off windows share a single table; the
// kind column decides which nullable column group is populated.
type PostgresAvailabilityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAvailabilityRepository creates a new PostgreSQL availability repository.
func NewPostgresAvailabilityRepository(pool *pgxpool.Pool) *PostgresAvailabilityRepository {
	return &PostgresAvailabilityRepository{pool: pool}
}

// availabilityRow mirrors the availability_windows table layout.
type availabilityRow struct {
	ID             uuid.UUID
	TutorID        uuid.UUID
	Kind           string
	Weekday        *int
	LocalStart     *string
	LocalEnd       *string
	Timezone       *string
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time
	StartAt        *time.Time
	EndAt          *time.Time
	Blocked        bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Save upserts an availability window.
func (r *PostgresAvailabilityRepository) Save(ctx context.Context, window *domain.AvailabilityWindow) error {
	query := `
		INSERT INTO availability_windows (
			id, tutor_id, kind, weekday, local_start, local_end, timezone,
			effective_from, effective_until, start_at, end_at, blocked,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			weekday = EXCLUDED.weekday,
			local_start = EXCLUDED.local_start,
			local_end = EXCLUDED.local_end,
			timezone = EXCLUDED.timezone,
			effective_from = EXCLUDED.effective_from,
			effective_until = EXCLUDED.effective_until,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			blocked = EXCLUDED.blocked,
			updated_at = EXCLUDED.updated_at
	`

	row := availabilityToRow(window)
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		row.ID, row.TutorID, row.Kind,
		row.Weekday, row.LocalStart, row.LocalEnd, row.Timezone,
		row.EffectiveFrom, row.EffectiveUntil,
		row.StartAt, row.EndAt, row.Blocked,
		row.CreatedAt, row.UpdatedAt,
	)
	return err
}

// FindByID retrieves an availability window by its ID.
func (r *PostgresAvailabilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AvailabilityWindow, error) {
	query := selectAvailabilityColumns + ` WHERE id = $1`

	exec := sharedPersistence.Executor(ctx, r.pool)
	window, err := scanAvailability(exec.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWindowNotFound
		}
		return nil, err
	}
	return window, nil
}

// ListByTutor returns all availability windows for a tutor.
func (r *PostgresAvailabilityRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*domain.AvailabilityWindow, error) {
	query := selectAvailabilityColumns + ` WHERE tutor_id = $1 ORDER BY created_at`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]*domain.AvailabilityWindow, 0)
	for rows.Next() {
		window, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, rows.Err()
}

// Delete removes an availability window. Deleting a missing window is not an error.
func (r *PostgresAvailabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, `DELETE FROM availability_windows WHERE id = $1`, id)
	return err
}

const selectAvailabilityColumns = `
	SELECT id, tutor_id, kind, weekday, local_start, local_end, timezone,
		effective_from, effective_until, start_at, end_at, blocked,
		created_at, updated_at
	FROM availability_windows`

func availabilityToRow(window *domain.AvailabilityWindow) availabilityRow {
	row := availabilityRow{
		ID:        window.ID(),
		TutorID:   window.TutorID(),
		Kind:      string(window.Kind()),
		Blocked:   window.IsBlocked(),
		CreatedAt: window.CreatedAt(),
		UpdatedAt: window.UpdatedAt(),
	}

	switch window.Kind() {
	case domain.WindowKindRecurring:
		rule := window.Rule()
		weekday := int(rule.Weekday)
		row.Weekday = &weekday
		row.LocalStart = &rule.LocalStart
		row.LocalEnd = &rule.LocalEnd
		row.Timezone = &rule.Timezone
		effectiveFrom := rule.EffectiveFrom
		row.EffectiveFrom = &effectiveFrom
		row.EffectiveUntil = rule.EffectiveUntil
	case domain.WindowKindOneOff:
		startAt := window.OneOff().Start()
		endAt := window.OneOff().End()
		row.StartAt = &startAt
		row.EndAt = &endAt
	}
	return row
}

func scanAvailability(row pgx.Row) (*domain.AvailabilityWindow, error) {
	var r availabilityRow
	err := row.Scan(
		&r.ID, &r.TutorID, &r.Kind,
		&r.Weekday, &r.LocalStart, &r.LocalEnd, &r.Timezone,
		&r.EffectiveFrom, &r.EffectiveUntil,
		&r.StartAt, &r.EndAt, &r.Blocked,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rowToAvailability(r)
}

func rowToAvailability(r availabilityRow) (*domain.AvailabilityWindow, error) {
	kind := domain.WindowKind(r.Kind)

	var rule domain.RecurringRule
	var oneOff domain.TimeRange

	switch kind {
	case domain.WindowKindRecurring:
		rule = domain.RecurringRule{
			Weekday:        time.Weekday(*r.Weekday),
			LocalStart:     *r.LocalStart,
			LocalEnd:       *r.LocalEnd,
			Timezone:       *r.Timezone,
			EffectiveFrom:  *r.EffectiveFrom,
			EffectiveUntil: r.EffectiveUntil,
		}
	case domain.WindowKindOneOff:
		timeRange, err := domain.NewTimeRange(*r.StartAt, *r.EndAt)
		if err != nil {
			return nil, err
		}
		oneOff = timeRange
	}

	return domain.RehydrateAvailabilityWindow(
		r.ID, r.TutorID, kind, rule, oneOff, r.Blocked, r.CreatedAt, r.UpdatedAt,
	), nil
}
