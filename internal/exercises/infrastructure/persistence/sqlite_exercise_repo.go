package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// SQLiteExerciseRepository implements the exercise store on SQLite for local
// mode.
type SQLiteExerciseRepository struct {
	db *sql.DB
}

// NewSQLiteExerciseRepository creates a new SQLite exercise repository.
func NewSQLiteExerciseRepository(db *sql.DB) *SQLiteExerciseRepository {
	return &SQLiteExerciseRepository{db: db}
}

const sqliteExerciseSelect = `
	SELECT id, student_id, tutor_id, title, subject, price_cents, status,
		request_file_ref, solution_file_ref, submitted_at, solved_at, version,
		created_at, updated_at
	FROM exercise_requests`

// Save inserts a new exercise request.
func (r *SQLiteExerciseRepository) Save(ctx context.Context, exercise *domain.ExerciseRequest) error {
	query := `
		INSERT INTO exercise_requests (
			id, student_id, tutor_id, title, subject, price_cents, status,
			request_file_ref, solution_file_ref, submitted_at, solved_at, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := exec.ExecContext(ctx, query,
		exercise.ID().String(),
		exercise.StudentID().String(),
		uuidPtrString(exercise.TutorID()),
		exercise.Title(),
		exercise.Subject(),
		exercise.PriceCents(),
		exercise.Status().String(),
		exercise.RequestFileRef(),
		exercise.SolutionFileRef(),
		sqliteTime(exercise.SubmittedAt()),
		timePtrString(exercise.SolvedAt()),
		exercise.Version(),
		sqliteTime(exercise.CreatedAt()),
		sqliteTime(exercise.UpdatedAt()),
	)
	return err
}

// Update persists the aggregate's state when the stored version still
// matches expectedVersion.
func (r *SQLiteExerciseRepository) Update(ctx context.Context, exercise *domain.ExerciseRequest, expectedVersion int64) error {
	query := `
		UPDATE exercise_requests
		SET tutor_id = ?, status = ?, solution_file_ref = ?, solved_at = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	result, err := exec.ExecContext(ctx, query,
		uuidPtrString(exercise.TutorID()),
		exercise.Status().String(),
		exercise.SolutionFileRef(),
		timePtrString(exercise.SolvedAt()),
		sqliteTime(time.Now().UTC()),
		exercise.ID().String(),
		expectedVersion,
	)
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

	var exists int
	err = exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM exercise_requests WHERE id = ?`, exercise.ID().String()).
		Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrExerciseNotFound
	}
	return domain.ErrVersionMismatch
}

// FindByID retrieves an exercise request by its ID.
func (r *SQLiteExerciseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ExerciseRequest, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	row := exec.QueryRowContext(ctx, sqliteExerciseSelect+` WHERE id = ?`, id.String())

	exercise, err := scanSQLiteExercise(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// ListByStudent returns a student's requests, newest first.
func (r *SQLiteExerciseRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.ExerciseRequest, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, sqliteExerciseSelect+` WHERE student_id = ? ORDER BY submitted_at DESC`, studentID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteExercises(rows)
}

// ListByTutor returns the requests assigned to a tutor, newest first.
func (r *SQLiteExerciseRepository) ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*domain.ExerciseRequest, error) {
	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, sqliteExerciseSelect+` WHERE tutor_id = ? ORDER BY submitted_at DESC`, tutorID.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteExercises(rows)
}

// ListOpen returns unassigned new requests, oldest first.
func (r *SQLiteExerciseRepository) ListOpen(ctx context.Context, subject string, limit int) ([]*domain.ExerciseRequest, error) {
	query := sqliteExerciseSelect + ` WHERE status = 'new'`
	args := []any{}
	if subject != "" {
		query += ` AND subject = ?`
		args = append(args, subject)
	}
	query += ` ORDER BY submitted_at LIMIT ?`
	args = append(args, limit)

	exec := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collectSQLiteExercises(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteExercise(row rowScanner) (*domain.ExerciseRequest, error) {
	var (
		idStr, studentStr      string
		tutorStr               sql.NullString
		title, subject         string
		priceCents             int64
		status, requestFileRef string
		solutionFileRef        sql.NullString
		submittedStr           string
		solvedStr              sql.NullString
		version                int64
		createdStr, updatedStr string
	)

	err := row.Scan(&idStr, &studentStr, &tutorStr, &title, &subject, &priceCents,
		&status, &requestFileRef, &solutionFileRef, &submittedStr, &solvedStr,
		&version, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	studentID, err := uuid.Parse(studentStr)
	if err != nil {
		return nil, err
	}

	var tutorID *uuid.UUID
	if tutorStr.Valid {
		parsed, err := uuid.Parse(tutorStr.String)
		if err != nil {
			return nil, err
		}
		tutorID = &parsed
	}

	var solution *string
	if solutionFileRef.Valid {
		solution = &solutionFileRef.String
	}

	submittedAt, err := parseSQLiteTime(submittedStr)
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

	var solvedAt *time.Time
	if solvedStr.Valid {
		parsed, err := parseSQLiteTime(solvedStr.String)
		if err != nil {
			return nil, err
		}
		solvedAt = &parsed
	}

	return domain.RehydrateExerciseRequest(
		id, studentID, tutorID, title, subject, priceCents,
		domain.ExerciseStatus(status), requestFileRef, solution,
		submittedAt, solvedAt, version, createdAt, updatedAt,
	), nil
}

func collectSQLiteExercises(rows *sql.Rows) ([]*domain.ExerciseRequest, error) {
	exercises := make([]*domain.ExerciseRequest, 0)
	for rows.Next() {
		exercise, err := scanSQLiteExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, exercise)
	}
	return exercises, rows.Err()
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timePtrString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := sqliteTime(*t)
	return &s
}

// sqliteTimeLayout is fixed width so lexicographic comparison in SQL matches
// chronological order.
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
