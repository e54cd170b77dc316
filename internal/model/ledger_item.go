package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the kind of financial record a spreadsheet row describes.
type Classification string

const (
	ClassificationDebt      Classification = "debt"
	ClassificationRecurring Classification = "recurring"
	ClassificationExpense   Classification = "expense"
)

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationDebt, ClassificationRecurring, ClassificationExpense:
		return true
	}
	return false
}

// LedgerItem is one classified row of an imported spreadsheet.
type LedgerItem struct {
	Description        string
	Value              decimal.Decimal
	Date               *time.Time          // nil when missing or unparseable
	EntryValue         decimal.NullDecimal // down payment found in column 3
	InstallmentDetails string              // raw "<amount> x <count>" text, "" when absent
	Classification     Classification
	InstallmentsCount  int                 // debt only
	InstallmentValue   decimal.NullDecimal // debt only
}

// IsDebt reports whether the item carries installment fields.
func (i LedgerItem) IsDebt() bool {
	return i.Classification == ClassificationDebt
}

// DueDay returns the day of month of the item's date, or 0 without a date.
func (i LedgerItem) DueDay() int {
	if i.Date == nil {
		return 0
	}
	return i.Date.Day()
}
