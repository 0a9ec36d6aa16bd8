package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/academy/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionManager_WithinTx(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		manager := NewGormTransactionManager(gormDB)

		called := false
		err := manager.WithinTx(context.Background(), func(ctx context.Context) error {
			called = true
			assert.NotNil(t, txFromContext(ctx))
			return nil
		})

		require.NoError(t, err)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		manager := NewGormTransactionManager(gormDB)

		failure := errors.New("payment rejected")
		err := manager.WithinTx(context.Background(), func(ctx context.Context) error {
			return failure
		})

		assert.ErrorIs(t, err, failure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the ambient transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		// Only one begin/commit pair for both levels
		mock.ExpectBegin()
		mock.ExpectCommit()

		manager := NewGormTransactionManager(gormDB)

		err := manager.WithinTx(context.Background(), func(ctx context.Context) error {
			return manager.WithinTx(ctx, func(inner context.Context) error {
				assert.Equal(t, txFromContext(ctx), txFromContext(inner))
				return nil
			})
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("repositories fall back to base connection outside a transaction", func(t *testing.T) {
		gormDB, _, mockDB := newMockDB(t)
		defer mockDB.Close()

		assert.Equal(t, gormDB, dbFromContext(context.Background(), gormDB))
	})
}

// Compile-time check that the manager satisfies the application-layer port
var _ shared.TransactionManager = (*GormTransactionManager)(nil)
