package fees

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBillFor(t *testing.T, account *FeeAccount, total int64) *Bill {
	t.Helper()
	bill, err := NewBill("AC-2026-0100", "AC", account.ID, account.StudentID,
		decimal.NewFromInt(total), BillSubjectCourse, time.Now())
	require.NoError(t, err)
	return bill
}

func TestPaymentProcessor_Apply_ExactPayment(t *testing.T) {
	processor := NewPaymentProcessor()
	account := createSingleAccount(t, 5000)
	bill := openBillFor(t, account, 5000)

	outcome, err := processor.Apply(account, bill, decimal.NewFromInt(5000), decimal.Zero,
		WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
	require.NoError(t, err)

	assert.True(t, outcome.Settled)
	assert.Equal(t, BillStatusPaid, bill.Status)
	assert.True(t, outcome.Excess.IsZero())
	assert.True(t, outcome.WalletDeduction.IsZero())
	assert.Nil(t, outcome.HistoryEntry)
}

func TestPaymentProcessor_Apply_Overpayment(t *testing.T) {
	processor := NewPaymentProcessor()
	account := createSingleAccount(t, 5000)
	bill := openBillFor(t, account, 5000)

	outcome, err := processor.Apply(account, bill, decimal.NewFromInt(6000), decimal.Zero,
		WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
	require.NoError(t, err)

	assert.True(t, outcome.Settled)
	assert.Equal(t, BillStatusPaid, bill.Status)
	assert.True(t, outcome.Excess.Equal(decimal.NewFromInt(1000)))
	assert.True(t, outcome.WalletDeduction.IsZero())
}

func TestPaymentProcessor_Apply_Underpayment(t *testing.T) {
	processor := NewPaymentProcessor()

	t.Run("rejected for single accounts with the shortfall surfaced", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		bill := openBillFor(t, account, 5000)

		_, err := processor.Apply(account, bill, decimal.NewFromInt(3000), decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2000.00")
		assert.Equal(t, BillStatusUnpaid, bill.Status)
	})

	t.Run("rejected for installment accounts", func(t *testing.T) {
		account := createInstallmentAccount(t, 5000)
		bill := openBillFor(t, account, 5000)

		_, err := processor.Apply(account, bill, decimal.NewFromInt(4999), decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
		assert.Error(t, err)
	})

	t.Run("absorbed as history for partial accounts, bill stays open", func(t *testing.T) {
		account := createPartialAccount(t, 2000)
		bill := openBillFor(t, account, 2000)
		paidAt := time.Now()

		outcome, err := processor.Apply(account, bill, decimal.NewFromInt(1200), decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, paidAt)
		require.NoError(t, err)

		assert.False(t, outcome.Settled)
		assert.Equal(t, BillStatusUnpaid, bill.Status)
		require.NotNil(t, outcome.HistoryEntry)
		assert.True(t, outcome.HistoryEntry.Amount.Equal(decimal.NewFromInt(1200)))

		summary := ProjectSummary(account, []Bill{*bill})
		assert.True(t, summary.Balance.Equal(decimal.NewFromInt(800)))
	})
}

func TestPaymentProcessor_Apply_WithWallet(t *testing.T) {
	processor := NewPaymentProcessor()

	t.Run("wallet covers the whole bill with zero cash", func(t *testing.T) {
		account := createPartialAccount(t, 3000)
		bill := openBillFor(t, account, 3000)

		outcome, err := processor.Apply(account, bill, decimal.Zero, decimal.NewFromInt(3000),
			WalletPolicy{UseWallet: true}, PaymentMethodWallet, time.Now())
		require.NoError(t, err)

		assert.True(t, outcome.Settled)
		assert.Equal(t, BillStatusPaid, bill.Status)
		assert.True(t, outcome.WalletDeduction.Equal(decimal.NewFromInt(3000)))
		assert.True(t, outcome.Excess.IsZero())
	})

	t.Run("deduction caps at the bill total", func(t *testing.T) {
		account := createSingleAccount(t, 2000)
		bill := openBillFor(t, account, 2000)

		outcome, err := processor.Apply(account, bill, decimal.Zero, decimal.NewFromInt(5000),
			WalletPolicy{UseWallet: true}, PaymentMethodWallet, time.Now())
		require.NoError(t, err)

		assert.True(t, outcome.WalletDeduction.Equal(decimal.NewFromInt(2000)))
		assert.True(t, outcome.Settled)
	})

	t.Run("cash tops up what the wallet cannot cover", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		bill := openBillFor(t, account, 5000)

		outcome, err := processor.Apply(account, bill, decimal.NewFromInt(3000), decimal.NewFromInt(2000),
			WalletPolicy{UseWallet: true}, PaymentMethodCash, time.Now())
		require.NoError(t, err)

		assert.True(t, outcome.Settled)
		assert.True(t, outcome.WalletDeduction.Equal(decimal.NewFromInt(2000)))
		assert.True(t, outcome.Excess.IsZero())
	})

	t.Run("overpayment logic applies to the remainder after deduction", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		bill := openBillFor(t, account, 5000)

		outcome, err := processor.Apply(account, bill, decimal.NewFromInt(4000), decimal.NewFromInt(2000),
			WalletPolicy{UseWallet: true}, PaymentMethodCash, time.Now())
		require.NoError(t, err)

		// due after deduction = 3000, cash 4000 -> 1000 excess
		assert.True(t, outcome.Excess.Equal(decimal.NewFromInt(1000)))
		assert.True(t, outcome.WalletDeduction.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("wallet shortfall on a partial account becomes history", func(t *testing.T) {
		account := createPartialAccount(t, 2000)
		bill := openBillFor(t, account, 2000)

		outcome, err := processor.Apply(account, bill, decimal.NewFromInt(300), decimal.NewFromInt(500),
			WalletPolicy{UseWallet: true}, PaymentMethodCash, time.Now())
		require.NoError(t, err)

		assert.False(t, outcome.Settled)
		assert.True(t, outcome.WalletDeduction.Equal(decimal.NewFromInt(500)))
		require.NotNil(t, outcome.HistoryEntry)
		// cash plus wallet portion both reduce what is owed
		assert.True(t, outcome.HistoryEntry.Amount.Equal(decimal.NewFromInt(800)))
	})
}

func TestPaymentProcessor_Apply_WalletInvariant(t *testing.T) {
	// balanceAfter = balanceBefore + excess - deduction, and >= 0, for
	// every accepted payment
	processor := NewPaymentProcessor()
	tests := []struct {
		name          string
		billTotal     int64
		paid          int64
		walletBalance int64
		useWallet     bool
	}{
		{"exact cash", 5000, 5000, 700, false},
		{"overpayment", 5000, 6000, 0, false},
		{"wallet covers all", 3000, 0, 3000, true},
		{"wallet plus cash", 5000, 3000, 2000, true},
		{"wallet plus overpaying cash", 5000, 4000, 2000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := createSingleAccount(t, tt.billTotal)
			bill := openBillFor(t, account, tt.billTotal)
			before := decimal.NewFromInt(tt.walletBalance)

			outcome, err := processor.Apply(account, bill, decimal.NewFromInt(tt.paid), before,
				WalletPolicy{UseWallet: tt.useWallet}, PaymentMethodCash, time.Now())
			require.NoError(t, err)

			after := before.Add(outcome.Excess).Sub(outcome.WalletDeduction)
			assert.False(t, after.IsNegative())
			assert.True(t, outcome.WalletDeduction.LessThanOrEqual(before))
		})
	}
}

func TestPaymentProcessor_Apply_NotIdempotent(t *testing.T) {
	processor := NewPaymentProcessor()
	account := createSingleAccount(t, 5000)
	bill := openBillFor(t, account, 5000)

	_, err := processor.Apply(account, bill, decimal.NewFromInt(5000), decimal.Zero,
		WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
	require.NoError(t, err)

	// a replay never double-credits: it fails before any computation
	outcome, err := processor.Apply(account, bill, decimal.NewFromInt(5000), decimal.Zero,
		WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
	assert.ErrorIs(t, err, ErrBillAlreadyPaid)
	assert.Nil(t, outcome)
}

func TestPaymentProcessor_Apply_Validation(t *testing.T) {
	processor := NewPaymentProcessor()

	t.Run("negative amount", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		bill := openBillFor(t, account, 5000)
		_, err := processor.Apply(account, bill, decimal.NewFromInt(-1), decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
		assert.Error(t, err)
	})

	t.Run("zero amount without wallet", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		bill := openBillFor(t, account, 5000)
		_, err := processor.Apply(account, bill, decimal.Zero, decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
		assert.Error(t, err)
	})

	t.Run("bill from another account", func(t *testing.T) {
		account := createSingleAccount(t, 5000)
		other := createSingleAccount(t, 5000)
		bill := openBillFor(t, other, 5000)
		_, err := processor.Apply(account, bill, decimal.NewFromInt(5000), decimal.Zero,
			WalletPolicy{UseWallet: false}, PaymentMethodCash, time.Now())
		assert.Error(t, err)
	})

	t.Run("empty wallet with zero cash applies nothing", func(t *testing.T) {
		account := createPartialAccount(t, 2000)
		bill := openBillFor(t, account, 2000)
		_, err := processor.Apply(account, bill, decimal.Zero, decimal.Zero,
			WalletPolicy{UseWallet: true}, PaymentMethodWallet, time.Now())
		assert.Error(t, err)
	})
}

func TestPaymentProcessor_Apply_SettlesLinkedInstallment(t *testing.T) {
	processor := NewPaymentProcessor()
	generator := NewBillGenerator("AC")
	account := createInstallmentAccount(t, 5000, 5000)

	bill, err := generator.GenerateInstallmentBill(account, account.Installments[0].ID, nil,
		"AC-2026-0200", time.Now())
	require.NoError(t, err)

	outcome, err := processor.Apply(account, bill, decimal.NewFromInt(5000), decimal.Zero,
		WalletPolicy{UseWallet: false}, PaymentMethodUPI, time.Now())
	require.NoError(t, err)

	assert.True(t, outcome.Settled)
	assert.Equal(t, InstallmentStatusPaid, account.Installments[0].Status)
	assert.Equal(t, InstallmentStatusPending, account.Installments[1].Status)
}
