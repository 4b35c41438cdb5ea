package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE test_data (id INTEGER PRIMARY KEY, value TEXT)`)
	require.NoError(t, err)

	return db
}

func TestSQLiteUnitOfWork_Begin(t *testing.T) {
	uow := NewSQLiteUnitOfWork(setupTestDB(t))

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)

	info, ok := SQLiteTxInfoFromContext(txCtx)
	assert.True(t, ok)
	assert.NotNil(t, info.Tx)
	assert.True(t, info.Owned)

	require.NoError(t, uow.Rollback(txCtx))
}

func TestSQLiteUnitOfWork_NestedBeginReusesTransaction(t *testing.T) {
	uow := NewSQLiteUnitOfWork(setupTestDB(t))

	outerCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)
	outerInfo, _ := SQLiteTxInfoFromContext(outerCtx)

	innerCtx, err := uow.Begin(outerCtx)
	require.NoError(t, err)
	innerInfo, ok := SQLiteTxInfoFromContext(innerCtx)
	require.True(t, ok)

	assert.False(t, innerInfo.Owned)
	assert.Equal(t, outerInfo.Tx, innerInfo.Tx)

	// Commit on the inner context is a no-op; the outer rollback wins.
	require.NoError(t, uow.Commit(innerCtx))
	require.NoError(t, uow.Rollback(outerCtx))
}

func TestSQLiteUnitOfWork_CommitPersistsData(t *testing.T) {
	db := setupTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)

	info, ok := SQLiteTxInfoFromContext(txCtx)
	require.True(t, ok)
	_, err = info.Tx.Exec(`INSERT INTO test_data (value) VALUES ('kept')`)
	require.NoError(t, err)

	require.NoError(t, uow.Commit(txCtx))

	var value string
	require.NoError(t, db.QueryRow(`SELECT value FROM test_data`).Scan(&value))
	assert.Equal(t, "kept", value)
}

func TestSQLiteUnitOfWork_RollbackDiscardsData(t *testing.T) {
	db := setupTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)

	info, _ := SQLiteTxInfoFromContext(txCtx)
	_, err = info.Tx.Exec(`INSERT INTO test_data (value) VALUES ('discarded')`)
	require.NoError(t, err)

	require.NoError(t, uow.Rollback(txCtx))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM test_data`).Scan(&count))
	assert.Zero(t, count)
}

func TestSQLiteUnitOfWork_NoTransactionInContext(t *testing.T) {
	uow := NewSQLiteUnitOfWork(setupTestDB(t))

	assert.Error(t, uow.Commit(context.Background()))
	assert.Error(t, uow.Rollback(context.Background()))
}
