package fees

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillGenerator_GenerateInstallmentBill(t *testing.T) {
	generator := NewBillGenerator("AC")
	now := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)

	t.Run("bills a pending installment and advances its status", func(t *testing.T) {
		account := createInstallmentAccount(t, 5000, 5000)
		target := account.Installments[0]

		bill, err := generator.GenerateInstallmentBill(account, target.ID, nil, "AC-2026-0001", now)
		require.NoError(t, err)

		assert.True(t, bill.Total.Equal(decimal.NewFromInt(5000)))
		assert.Equal(t, BillStatusUnpaid, bill.Status)
		assert.Equal(t, BillSubjectCourse, bill.Subject)
		assert.Equal(t, "AC", bill.CenterPrefix)
		assert.Equal(t, InstallmentStatusBilled, account.Installments[0].Status)
		require.NotNil(t, bill.InstallmentID)
		assert.Equal(t, target.ID, *bill.InstallmentID)

		// the matcher now resolves the installment to its bill
		matched := FindBillForInstallment(&account.Installments[0], []Bill{*bill})
		require.NotNil(t, matched)
		assert.Equal(t, bill.ID, matched.ID)
	})

	t.Run("unknown installment id fails with not found", func(t *testing.T) {
		account := createInstallmentAccount(t, 5000)
		_, err := generator.GenerateInstallmentBill(account, uuid.New(), nil, "AC-2026-0002", now)
		assert.ErrorIs(t, err, ErrInstallmentNotFound)
	})

	t.Run("a live matching bill blocks double billing", func(t *testing.T) {
		account := createInstallmentAccount(t, 5000)
		target := account.Installments[0].ID

		first, err := generator.GenerateInstallmentBill(account, target, nil, "AC-2026-0003", now)
		require.NoError(t, err)

		_, err = generator.GenerateInstallmentBill(account, target, []Bill{*first}, "AC-2026-0004", now)
		assert.ErrorIs(t, err, ErrAlreadyBilled)
		assert.Equal(t, InstallmentStatusBilled, account.Installments[0].Status)
	})

	t.Run("settled installment cannot be billed", func(t *testing.T) {
		account := createInstallmentAccount(t, 5000)
		target := account.Installments[0].ID
		_, err := account.MarkInstallmentPaid(target)
		require.NoError(t, err)

		_, err = generator.GenerateInstallmentBill(account, target, nil, "AC-2026-0005", now)
		assert.Error(t, err)
	})
}

func TestBillGenerator_GeneratePartialBalanceBill(t *testing.T) {
	generator := NewBillGenerator("AC")
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	t.Run("bills the projected remaining balance", func(t *testing.T) {
		account := createPartialAccount(t, 3000)

		bill, err := generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0010", now)
		require.NoError(t, err)
		assert.True(t, bill.Total.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, BillStatusUnpaid, bill.Status)
	})

	t.Run("projection, not the stored cache, drives the amount", func(t *testing.T) {
		account := createPartialAccount(t, 3000)
		// stale cache claims everything is paid; the history says otherwise
		account.PaidAmount = decimal.NewFromInt(3000)
		_, err := account.RecordPartialPayment(decimal.NewFromInt(1000), now.AddDate(0, 0, -10))
		require.NoError(t, err)

		bill, err := generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0011", now)
		require.NoError(t, err)
		assert.True(t, bill.Total.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("nothing to bill when balance is settled", func(t *testing.T) {
		account := createPartialAccount(t, 3000)
		_, err := account.RecordPartialPayment(decimal.NewFromInt(3000), now.AddDate(0, 0, -1))
		require.NoError(t, err)

		_, err = generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0012", now)
		assert.ErrorIs(t, err, ErrNothingToBill)
	})

	t.Run("an open bill covering the balance blocks a duplicate", func(t *testing.T) {
		account := createPartialAccount(t, 3000)
		open, err := generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0013", now)
		require.NoError(t, err)

		_, err = generator.GeneratePartialBalanceBill(account, []Bill{*open}, "AC-2026-0014", now)
		assert.ErrorIs(t, err, ErrNothingToBill)
	})

	t.Run("reissues the open bill after a partial payment reduced the balance", func(t *testing.T) {
		// Scenario: bill for 2000 outstanding, 1200 paid in the meantime;
		// the next balance bill must come out at exactly 800 while keeping
		// a single outstanding bill.
		account := createPartialAccount(t, 2000)
		open, err := generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0015", now)
		require.NoError(t, err)
		_, err = account.RecordPartialPayment(decimal.NewFromInt(1200), now.AddDate(0, 0, 3))
		require.NoError(t, err)

		bill, err := generator.GeneratePartialBalanceBill(account, []Bill{*open}, "AC-2026-0016", now.AddDate(0, 0, 5))
		require.NoError(t, err)
		assert.True(t, bill.Total.Equal(decimal.NewFromInt(800)))
		assert.Equal(t, BillStatusUnpaid, bill.Status)
		assert.Equal(t, open.InvoiceNo, bill.InvoiceNo)
	})

	t.Run("rejects non-partial accounts", func(t *testing.T) {
		account := createSingleAccount(t, 3000)
		_, err := generator.GeneratePartialBalanceBill(account, nil, "AC-2026-0017", now)
		assert.Error(t, err)
	})
}
