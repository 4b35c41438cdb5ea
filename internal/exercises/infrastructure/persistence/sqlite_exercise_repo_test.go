package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/exercises/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/migrations"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), sqlDB))
	return sqlDB
}

func newStoredExercise(t *testing.T, repo *SQLiteExerciseRepository) *domain.ExerciseRequest {
	t.Helper()

	exercise, err := domain.NewExerciseRequest(uuid.New(), "Calculus problem set", "math", 2500, "files/req.pdf")
	require.NoError(t, err)
	exercise.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), exercise))
	return exercise
}

func TestSQLiteExerciseRepository_Save_FindByID(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))
	exercise := newStoredExercise(t, repo)

	found, err := repo.FindByID(context.Background(), exercise.ID())
	require.NoError(t, err)
	assert.Equal(t, exercise.ID(), found.ID())
	assert.Equal(t, exercise.StudentID(), found.StudentID())
	assert.Nil(t, found.TutorID())
	assert.Equal(t, "Calculus problem set", found.Title())
	assert.Equal(t, int64(2500), found.PriceCents())
	assert.Equal(t, domain.ExerciseStatusNew, found.Status())
	assert.Equal(t, int64(0), found.Version())
	assert.Nil(t, found.SolutionFileRef())
	assert.Nil(t, found.SolvedAt())
}

func TestSQLiteExerciseRepository_FindByID_NotFound(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
}

func TestSQLiteExerciseRepository_Update_ClaimRace(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))
	ctx := context.Background()
	stored := newStoredExercise(t, repo)

	// Both tutors load the request at version 0.
	seenByX, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	seenByY, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)

	tutorX := uuid.New()
	require.NoError(t, seenByX.Accept(tutorX))
	require.NoError(t, repo.Update(ctx, seenByX, 0))

	require.NoError(t, seenByY.Accept(uuid.New()))
	err = repo.Update(ctx, seenByY, 0)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)

	// The winner's claim stands at version 1.
	found, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStatusInProgress, found.Status())
	assert.Equal(t, int64(1), found.Version())
	require.NotNil(t, found.TutorID())
	assert.Equal(t, tutorX, *found.TutorID())
}

func TestSQLiteExerciseRepository_Update_FullLifecycle(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))
	ctx := context.Background()
	stored := newStoredExercise(t, repo)

	tutorID := uuid.New()

	exercise, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	require.NoError(t, exercise.Accept(tutorID))
	require.NoError(t, repo.Update(ctx, exercise, 0))

	exercise, err = repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	require.NoError(t, exercise.SubmitSolution(tutorID, "files/sol.pdf"))
	require.NoError(t, repo.Update(ctx, exercise, 1))

	found, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseStatusSolved, found.Status())
	assert.Equal(t, int64(2), found.Version())
	require.NotNil(t, found.SolutionFileRef())
	assert.Equal(t, "files/sol.pdf", *found.SolutionFileRef())
	require.NotNil(t, found.SolvedAt())
}

func TestSQLiteExerciseRepository_Update_NotFound(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))

	exercise, err := domain.NewExerciseRequest(uuid.New(), "Never saved", "math", 100, "files/x.pdf")
	require.NoError(t, err)

	err = repo.Update(context.Background(), exercise, 0)
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
}

func TestSQLiteExerciseRepository_Lists(t *testing.T) {
	repo := NewSQLiteExerciseRepository(setupTestDB(t))
	ctx := context.Background()

	studentID := uuid.New()
	tutorID := uuid.New()

	first, err := domain.NewExerciseRequest(studentID, "First", "math", 100, "files/1.pdf")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := domain.NewExerciseRequest(studentID, "Second", "physics", 200, "files/2.pdf")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	other, err := domain.NewExerciseRequest(uuid.New(), "Other", "math", 300, "files/3.pdf")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	// Claim one so it leaves the open pool.
	claimed, err := repo.FindByID(ctx, second.ID())
	require.NoError(t, err)
	require.NoError(t, claimed.Accept(tutorID))
	require.NoError(t, repo.Update(ctx, claimed, 0))

	byStudent, err := repo.ListByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byTutor, err := repo.ListByTutor(ctx, tutorID)
	require.NoError(t, err)
	require.Len(t, byTutor, 1)
	assert.Equal(t, second.ID(), byTutor[0].ID())

	open, err := repo.ListOpen(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	openMath, err := repo.ListOpen(ctx, "math", 10)
	require.NoError(t, err)
	assert.Len(t, openMath, 2)

	openPhysics, err := repo.ListOpen(ctx, "physics", 10)
	require.NoError(t, err)
	assert.Empty(t, openPhysics)
}
