package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("requires a currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})

	t.Run("from string keeps exact decimals", func(t *testing.T) {
		m, err := NewMoneyFromString("1234.56")
		require.NoError(t, err)
		assert.Equal(t, "1234.56", m.StringFixed(2))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("rejects malformed strings", func(t *testing.T) {
		_, err := NewMoneyFromString("12,34")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyINR(decimal.NewFromInt(100))
	b := NewMoneyINR(decimal.NewFromInt(40))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(140)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(60)))

	minimum, err := a.Min(b)
	require.NoError(t, err)
	assert.True(t, minimum.Equals(b))

	t.Run("mixed currencies are rejected", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)
		_, err = a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
		_, err = a.Min(usd)
		assert.Error(t, err)
	})
}

func TestMoney_NoFloatDrift(t *testing.T) {
	// 0.1 added ten times is exactly 1 in decimal arithmetic
	tenth, err := NewMoneyFromString("0.1")
	require.NoError(t, err)
	total := Zero()
	for i := 0; i < 10; i++ {
		total, err = total.Add(tenth)
		require.NoError(t, err)
	}
	assert.True(t, total.Amount().Equal(decimal.NewFromInt(1)))
}

func TestMoney_Comparisons(t *testing.T) {
	a := NewMoneyINR(decimal.NewFromInt(100))
	b := NewMoneyINR(decimal.NewFromInt(200))

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	greater, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, greater)

	assert.True(t, a.IsPositive())
	assert.True(t, a.Negate().IsNegative())
	assert.True(t, Zero().IsZero())
}

func TestMoney_JSON(t *testing.T) {
	m, err := NewMoneyFromString("1500.75")
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1500.75","currency":"INR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))

	t.Run("rejects non-decimal amounts", func(t *testing.T) {
		var bad Money
		err := json.Unmarshal([]byte(`{"amount":"abc","currency":"INR"}`), &bad)
		assert.Error(t, err)
	})
}
