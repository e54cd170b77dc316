package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doispes-dev/doispes/internal/model"
)

func TestSummarize(t *testing.T) {
	b := NewBatch(sampleItems(), testOwner, testNow, nil)
	b.Transactions = append(b.Transactions,
		model.Transaction{Type: model.TransactionIncome, Value: dec("5000")},
		model.Transaction{Type: model.TransactionInvestment, Value: dec("300")},
	)

	s := Summarize(b.Debts, b.Recurring, b.Transactions)
	assert.Equal(t, 1, s.Debts)
	assert.Equal(t, 1, s.Recurring)
	assert.Equal(t, 4, s.Transactions)
	assert.Equal(t, "1500.00", s.MonthlyRecurring.StringFixed(2))
	assert.Equal(t, "964.00", s.MonthlyInstallments.StringFixed(2))
	assert.Equal(t, "11568.00", s.OutstandingDebt.StringFixed(2))
	assert.Equal(t, "5000.00", s.Income.StringFixed(2))
	assert.Equal(t, "330.40", s.Expenses.StringFixed(2))
	assert.Equal(t, "300.00", s.Investments.StringFixed(2))
	assert.Equal(t, "4369.60", s.Balance.StringFixed(2))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil)
	assert.True(t, s.Balance.IsZero())
	assert.Zero(t, s.Debts)
}

func TestLoadSummary(t *testing.T) {
	ctx := context.Background()
	s := NewCSVStore(t.TempDir())
	require.NoError(t, Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil)))

	sum, err := LoadSummary(ctx, s, "fam-1")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Transactions)
	assert.Equal(t, "-330.40", sum.Balance.StringFixed(2))
}
