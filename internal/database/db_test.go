package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockPool returns a pool backed by sqlmock with ping monitoring enabled
func newMockPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err, "Error creating mock database")
	t.Cleanup(func() { mockDB.Close() })

	return &Pool{DB: mockDB}, mock
}

// TestNilConnectionHandling tests handling of nil connections
func TestNilConnectionHandling(t *testing.T) {
	t.Run("Close with nil DB pointer", func(t *testing.T) {
		pool := &Pool{DB: nil}
		pool.Close()
	})

	t.Run("Close with nil pool", func(t *testing.T) {
		var pool *Pool
		pool.Close()
	})
}

// fakePinger fails the first failures pings
type fakePinger struct {
	failures int
	calls    int
}

func (f *fakePinger) PingContext(ctx context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

// TestWaitForDatabase tests the connection retry loop
func TestWaitForDatabase(t *testing.T) {
	t.Run("Retries until the server answers", func(t *testing.T) {
		db := &fakePinger{failures: 2}

		err := waitForDatabase(context.Background(), db, time.Millisecond)

		assert.NoError(t, err)
		assert.Equal(t, 3, db.calls)
	})

	t.Run("Gives up when the context expires", func(t *testing.T) {
		db := &fakePinger{failures: 1 << 30}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := waitForDatabase(ctx, db, 5*time.Millisecond)

		assert.EqualError(t, err, "connection refused")
		assert.Greater(t, db.calls, 1)
	})
}

// TestClose tests the Close function
func TestClose(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	pool := &Pool{DB: mockDB}
	mock.ExpectClose()

	pool.Close()

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestConfigurePool tests that pool limits are applied
func TestConfigurePool(t *testing.T) {
	pool, _ := newMockPool(t)

	configurePool(pool.DB, 12, 3)

	assert.Equal(t, 12, pool.Stats().MaxOpenConnections)
}

// TestTransaction tests the Transaction function
func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful transaction", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE pages").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE pages SET bot_enabled = true")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin transaction failure", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin().WillReturnError(errors.New("begin error"))

		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Function returns error", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		funcErr := errors.New("function error")
		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			return funcErr
		})

		assert.Equal(t, funcErr, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback failure after function error", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("rollback error"))

		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			return errors.New("function error")
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to rollback transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit failure", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit error"))

		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Panic in function", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		defer func() {
			r := recover()
			assert.Equal(t, "panic test", r)
			assert.NoError(t, mock.ExpectationsWereMet())
		}()

		_ = pool.Transaction(ctx, func(tx *sql.Tx) error {
			panic("panic test")
		})
	})
}

// TestHealthCheck tests the HealthCheck function
func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful health check", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		assert.NoError(t, pool.HealthCheck(ctx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ping failure", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database health check failed")
	})

	t.Run("Query failure", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("query error"))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database query test failed")
	})

	t.Run("Unexpected result", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectPing()
		mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(2))

		err := pool.HealthCheck(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database returned unexpected result")
	})
}
