package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/academy/backend/internal/domain/shared"
	"github.com/academy/backend/internal/domain/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockWalletRepository(t *testing.T) (*GormWalletRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormWalletRepository(gormDB), mock, mockDB
}

func TestGormWalletRepository_FindByStudent(t *testing.T) {
	t.Run("finds existing wallet", func(t *testing.T) {
		repo, mock, mockDB := newMockWalletRepository(t)
		defer mockDB.Close()

		walletID := uuid.New()
		studentID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "student_id", "balance"}).
			AddRow(walletID, now, now, 3, studentID, decimal.NewFromInt(1500))

		mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE student_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(studentID, 1).
			WillReturnRows(rows)

		w, err := repo.FindByStudent(context.Background(), studentID)

		require.NoError(t, err)
		require.NotNil(t, w)
		assert.Equal(t, walletID, w.ID)
		assert.Equal(t, studentID, w.StudentID)
		assert.Equal(t, 3, w.Version)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(1500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for student without wallet", func(t *testing.T) {
		repo, mock, mockDB := newMockWalletRepository(t)
		defer mockDB.Close()

		studentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE student_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(studentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		w, err := repo.FindByStudent(context.Background(), studentID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, w)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWalletRepository_Save(t *testing.T) {
	t.Run("inserts new wallet", func(t *testing.T) {
		repo, mock, mockDB := newMockWalletRepository(t)
		defer mockDB.Close()

		w, err := wallet.NewWallet(uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "wallets"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), w)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWalletRepository_SaveWithLock(t *testing.T) {
	t.Run("updates row still carrying the previous version", func(t *testing.T) {
		repo, mock, mockDB := newMockWalletRepository(t)
		defer mockDB.Close()

		w, err := wallet.NewWallet(uuid.New())
		require.NoError(t, err)
		_, err = w.Credit(decimal.NewFromInt(500), wallet.SourceManualTopup, nil)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "wallets" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), w)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when another writer won", func(t *testing.T) {
		repo, mock, mockDB := newMockWalletRepository(t)
		defer mockDB.Close()

		w, err := wallet.NewWallet(uuid.New())
		require.NoError(t, err)
		_, err = w.Credit(decimal.NewFromInt(500), wallet.SourceManualTopup, nil)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "wallets" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), w)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWalletTransactionRepository(t *testing.T) {
	newRepo := func(t *testing.T) (*GormWalletTransactionRepository, sqlmock.Sqlmock, *sql.DB) {
		gormDB, mock, mockDB := newMockDB(t)
		return NewGormWalletTransactionRepository(gormDB), mock, mockDB
	}

	t.Run("creates ledger entry", func(t *testing.T) {
		repo, mock, mockDB := newRepo(t)
		defer mockDB.Close()

		tx, err := wallet.NewTransaction(uuid.New(), wallet.TransactionTypeCredit,
			decimal.NewFromInt(500), decimal.Zero, decimal.NewFromInt(500), wallet.SourceOverpayment)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "wallet_transactions"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Create(context.Background(), tx)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lists entries newest first with total", func(t *testing.T) {
		repo, mock, mockDB := newRepo(t)
		defer mockDB.Close()

		studentID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "wallet_transactions" WHERE student_id = \$1`).
			WithArgs(studentID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{
			"id", "created_at", "updated_at",
			"student_id", "transaction_type", "amount",
			"balance_before", "balance_after", "source", "transaction_date",
		}).AddRow(
			uuid.New(), now, now,
			studentID, "DEBIT", decimal.NewFromInt(300),
			decimal.NewFromInt(800), decimal.NewFromInt(500), "BILL_DEDUCTION", now,
		)

		mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE student_id = \$1 ORDER BY transaction_date DESC, created_at DESC LIMIT .*`).
			WithArgs(studentID, 20).
			WillReturnRows(rows)

		transactions, total, err := repo.FindByStudent(context.Background(), studentID, shared.DefaultFilter())

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, transactions, 1)
		assert.Equal(t, wallet.TransactionTypeDebit, transactions[0].TransactionType)
		assert.Equal(t, wallet.SourceBillDeduction, transactions[0].Source)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("explicit created_at sort does not duplicate the tiebreaker", func(t *testing.T) {
		repo, mock, mockDB := newRepo(t)
		defer mockDB.Close()

		studentID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "wallet_transactions" WHERE student_id = \$1`).
			WithArgs(studentID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE student_id = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(studentID, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := shared.DefaultFilter()
		filter.OrderBy = "created_at"

		_, total, err := repo.FindByStudent(context.Background(), studentID, filter)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
