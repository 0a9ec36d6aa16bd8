package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/academy/backend/internal/domain/fees"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockFeeAccountRepository(t *testing.T) (*GormFeeAccountRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormFeeAccountRepository(gormDB), mock, mockDB
}

func feeAccountRows(accountID, studentID, courseID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"student_id", "course_id", "account_type",
		"total_fee", "registration_fee", "tax", "paid_amount", "installments",
	}).AddRow(
		accountID, now, now, 1,
		studentID, courseID, "SINGLE",
		decimal.NewFromInt(12000), decimal.NewFromInt(500), decimal.Zero, decimal.Zero, []byte("[]"),
	)
}

func TestGormFeeAccountRepository_FindByID(t *testing.T) {
	t.Run("finds existing account", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		studentID := uuid.New()
		courseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_accounts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, 1).
			WillReturnRows(feeAccountRows(accountID, studentID, courseID))

		account, err := repo.FindByID(context.Background(), accountID)

		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, studentID, account.StudentID)
		assert.Equal(t, fees.AccountTypeSingle, account.AccountType)
		assert.True(t, account.TotalFee.Equal(decimal.NewFromInt(12000)))
		assert.Empty(t, account.Installments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing account", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_accounts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(accountID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByID(context.Background(), accountID)

		assert.NoError(t, err)
		assert.Nil(t, account)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeAccountRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_accounts" WHERE id = \$1 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(accountID, 1).
			WillReturnRows(feeAccountRows(accountID, uuid.New(), uuid.New()))

		account, err := repo.FindByIDForUpdate(context.Background(), accountID)

		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeAccountRepository_FindByStudent(t *testing.T) {
	t.Run("returns accounts oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		studentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_accounts" WHERE student_id = \$1 ORDER BY created_at ASC`).
			WithArgs(studentID).
			WillReturnRows(feeAccountRows(uuid.New(), studentID, uuid.New()))

		accounts, err := repo.FindByStudent(context.Background(), studentID)

		require.NoError(t, err)
		assert.Len(t, accounts, 1)
		assert.Equal(t, studentID, accounts[0].StudentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when student has no accounts", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		studentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "fee_accounts" WHERE student_id = \$1 ORDER BY created_at ASC`).
			WithArgs(studentID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		accounts, err := repo.FindByStudent(context.Background(), studentID)

		require.NoError(t, err)
		assert.Empty(t, accounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormFeeAccountRepository_Save(t *testing.T) {
	t.Run("persists account with installments as jsonb", func(t *testing.T) {
		repo, mock, mockDB := newMockFeeAccountRepository(t)
		defer mockDB.Close()

		installment, err := fees.NewInstallment(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(2000))
		require.NoError(t, err)

		account, err := fees.NewFeeAccount(
			uuid.New(), uuid.New(), fees.AccountTypeInstallment,
			decimal.NewFromInt(2000), decimal.Zero, decimal.Zero,
			[]fees.Installment{*installment},
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "fee_accounts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), account)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
