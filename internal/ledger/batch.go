package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/doispes-dev/doispes/internal/model"
)

// Batch is one import's records, split by destination collection.
type Batch struct {
	Debts        []model.Debt
	Recurring    []model.RecurringExpense
	Transactions []model.Transaction
}

// Len returns the total number of records.
func (b Batch) Len() int {
	return len(b.Debts) + len(b.Recurring) + len(b.Transactions)
}

// NewID returns a random record ID.
func NewID() string {
	return uuid.NewString()
}

// NewBatch fans classified items out into debts, recurring expenses and plain
// transactions, stamping each with the owner, now and an ID from newID.
// A nil newID uses NewID.
func NewBatch(items []model.LedgerItem, owner model.Owner, now time.Time, newID func() string) Batch {
	if newID == nil {
		newID = NewID
	}

	var b Batch
	for _, it := range items {
		switch it.Classification {
		case model.ClassificationDebt:
			b.Debts = append(b.Debts, model.Debt{
				ID:                    newID(),
				FamilyID:              owner.FamilyID,
				UserID:                owner.UserID,
				Description:           it.Description,
				TotalValue:            it.Value,
				RemainingInstallments: it.InstallmentsCount,
				InstallmentValue:      it.InstallmentValue.Decimal,
				EntryValue:            it.EntryValue,
				InstallmentDetails:    it.InstallmentDetails,
				Date:                  it.Date,
				CreatedAt:             now,
			})
		case model.ClassificationRecurring:
			b.Recurring = append(b.Recurring, model.RecurringExpense{
				ID:          newID(),
				FamilyID:    owner.FamilyID,
				UserID:      owner.UserID,
				Description: it.Description,
				Amount:      it.Value,
				DueDay:      it.DueDay(),
				CreatedAt:   now,
			})
		default:
			date := now
			if it.Date != nil {
				date = *it.Date
			}
			b.Transactions = append(b.Transactions, model.Transaction{
				ID:          newID(),
				FamilyID:    owner.FamilyID,
				UserID:      owner.UserID,
				UserName:    owner.UserName,
				Type:        model.TransactionExpense,
				Value:       it.Value,
				Description: it.Description,
				Category:    model.DefaultCategory,
				Date:        dateOnly(date),
				CreatedAt:   now,
			})
		}
	}
	return b
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
