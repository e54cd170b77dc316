package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType mirrors the dashboard's entry types.
type TransactionType string

const (
	TransactionIncome     TransactionType = "Receita"
	TransactionExpense    TransactionType = "Despesa"
	TransactionInvestment TransactionType = "Investimento"
)

// DefaultCategory is assigned to imported transactions; the spreadsheet has no category column.
const DefaultCategory = "Outros"

// Owner is the caller-supplied context attached to every persisted record.
type Owner struct {
	FamilyID string
	UserID   string
	UserName string
}

// Debt is an installment liability (debts collection).
type Debt struct {
	ID                    string
	FamilyID              string
	UserID                string
	Description           string
	TotalValue            decimal.Decimal
	RemainingInstallments int
	InstallmentValue      decimal.Decimal
	EntryValue            decimal.NullDecimal
	InstallmentDetails    string
	Date                  *time.Time
	CreatedAt             time.Time
}

// Outstanding returns installment value times remaining installments.
func (d Debt) Outstanding() decimal.Decimal {
	return d.InstallmentValue.Mul(decimal.NewFromInt(int64(d.RemainingInstallments)))
}

// RecurringExpense is a fixed monthly bill (recurring_expenses collection).
type RecurringExpense struct {
	ID          string
	FamilyID    string
	UserID      string
	Description string
	Amount      decimal.Decimal
	DueDay      int
	CreatedAt   time.Time
}

// Transaction is a dated ledger movement (transactions collection).
type Transaction struct {
	ID          string
	FamilyID    string
	UserID      string
	UserName    string
	Type        TransactionType
	Value       decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
}
