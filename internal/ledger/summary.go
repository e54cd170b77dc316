package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/doispes-dev/doispes/internal/model"
)

// Summary aggregates a family's ledger the way the dashboard reports it.
type Summary struct {
	Debts        int
	Recurring    int
	Transactions int

	MonthlyRecurring    decimal.Decimal // sum of recurring amounts
	MonthlyInstallments decimal.Decimal // sum of debt installment values
	OutstandingDebt     decimal.Decimal // sum of installment value * remaining

	Income      decimal.Decimal
	Expenses    decimal.Decimal
	Investments decimal.Decimal
	Balance     decimal.Decimal // income - expenses - investments
}

// Summarize totals the three collections.
func Summarize(debts []model.Debt, recurring []model.RecurringExpense, txns []model.Transaction) Summary {
	s := Summary{
		Debts:        len(debts),
		Recurring:    len(recurring),
		Transactions: len(txns),
	}

	for _, d := range debts {
		s.MonthlyInstallments = s.MonthlyInstallments.Add(d.InstallmentValue)
		s.OutstandingDebt = s.OutstandingDebt.Add(d.Outstanding())
	}
	for _, r := range recurring {
		s.MonthlyRecurring = s.MonthlyRecurring.Add(r.Amount)
	}
	for _, t := range txns {
		switch t.Type {
		case model.TransactionIncome:
			s.Income = s.Income.Add(t.Value)
		case model.TransactionExpense:
			s.Expenses = s.Expenses.Add(t.Value)
		case model.TransactionInvestment:
			s.Investments = s.Investments.Add(t.Value)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses).Sub(s.Investments)
	return s
}

// LoadSummary reads familyID's collections from store and summarizes them.
func LoadSummary(ctx context.Context, store Store, familyID string) (Summary, error) {
	debts, err := store.Debts(ctx, familyID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading debts: %w", err)
	}
	recurring, err := store.Recurring(ctx, familyID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading recurring expenses: %w", err)
	}
	txns, err := store.Transactions(ctx, familyID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading transactions: %w", err)
	}
	return Summarize(debts, recurring, txns), nil
}
