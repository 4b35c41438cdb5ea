package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// PostgresExerciseRepository implements the exercise store on PostgreSQL.
// Update is a compare-and-swap on the version column, which serializes
// competing accepts of the same request.
type PostgresExerciseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresExerciseRepository creates a new PostgreSQL exercise repository.
func NewPostgresExerciseRepository(pool *pgxpool.Pool) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{pool: pool}
}

const selectExerciseColumns = `
	SELECT id, student_id, tutor_id, title, subject, price_cents, status,
		request_file_ref, solution_file_ref, submitted_at, solved_at, version,
		created_at, updated_at
	FROM exercise_requests`

// Save inserts a new exercise request.
func (r *PostgresExerciseRepository) Save(ctx context.Context, exercise *domain.ExerciseRequest) error {
	query := `
		INSERT INTO exercise_requests (
			id, student_id, tutor_id, title, subject, price_cents, status,
			request_file_ref, solution_file_ref, submitted_at, solved_at, version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		exercise.ID(),
		exercise.StudentID(),
		exercise.TutorID(),
		exercise.Title(),
		exercise.Subject(),
		exercise.PriceCents(),
		exercise.Status().String(),
		exercise.RequestFileRef(),
		exercise.SolutionFileRef(),
		exercise.SubmittedAt(),
		exercise.SolvedAt(),
		exercise.Version(),
		exercise.CreatedAt(),
		exercise.UpdatedAt(),
	)
	return err
}

// Update persists the aggregate's state when the stored version still
// matches expectedVersion.
func (r *PostgresExerciseRepository) Update(ctx context.Context, exercise *domain.ExerciseRequest, expectedVersion int64) error {
	query := `
		UPDATE exercise_requests
		SET tutor_id = $2, status = $3, solution_file_ref = $4, solved_at = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
	`

	exec := sharedPersistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx, query,
		exercise.ID(),
		exercise.TutorID(),
		exercise.Status().String(),
		exercise.SolutionFileRef(),
		exercise.SolvedAt(),
		expectedVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM exercise_requests WHERE id = $1)`, exercise.ID()).
		Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrExerciseNotFound
	}
	return domain.ErrVersionMismatch
}

// FindByID retrieves an exercise request by its ID.
func (r *PostgresExerciseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExerciseRequest, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	exercise, err := scanExercise(exec.QueryRow(ctx, selectExerciseColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ListByStudent returns a student's requests, newest first.
func (r *PostgresExerciseRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.ExerciseRequest, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, selectExerciseColumns+` WHERE student_id = $1 ORDER BY submitted_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExercises(rows)
}

// ListByTutor returns the requests assigned to a tutor, newest first.
func (r *PostgresExerciseRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*domain.ExerciseRequest, error) {
	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, selectExerciseColumns+` WHERE tutor_id = $1 ORDER BY submitted_at DESC`, tutorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExercises(rows)
}

// ListOpen returns unassigned new requests, oldest first.
func (r *PostgresExerciseRepository) ListOpen(ctx context.Context, subject string, limit int) ([]*domain.ExerciseRequest, error) {
	query := selectExerciseColumns + ` WHERE status = 'new'`
	args := []any{limit}
	if subject != "" {
		query += ` AND subject = $2`
		args = append(args, subject)
	}
	query += ` ORDER BY submitted_at LIMIT $1`

	exec := sharedPersistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectExercises(rows)
}

func scanExercise(row pgx.Row) (*domain.ExerciseRequest, error) {
	var (
		id, studentID          uuid.UUID
		tutorID                *uuid.UUID
		title, subject         string
		priceCents             int64
		status                 string
		requestFileRef         string
		solutionFileRef        *string
		submittedAt            time.Time
		solvedAt               *time.Time
		version                int64
		createdAt, updatedAt   time.Time
	)

	err := row.Scan(&id, &studentID, &tutorID, &title, &subject, &priceCents, &status,
		&requestFileRef, &solutionFileRef, &submittedAt, &solvedAt, &version,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateExerciseRequest(
		id, studentID, tutorID, title, subject, priceCents,
		domain.ExerciseStatus(status), requestFileRef, solutionFileRef,
		submittedAt, solvedAt, version, createdAt, updatedAt,
	), nil
}

func collectExercises(rows pgx.Rows) ([]*domain.ExerciseRequest, error) {
	exercises := make([]*domain.ExerciseRequest, 0)
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}
	return exercises, rows.Err()
}
