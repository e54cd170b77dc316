package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doispes-dev/doispes/internal/model"
)

func TestValidateBatch_Valid(t *testing.T) {
	b := NewBatch(sampleItems(), testOwner, testNow, seqIDs())
	assert.Empty(t, ValidateBatch(b))
}

func TestValidateBatch_MissingOwner(t *testing.T) {
	b := NewBatch(sampleItems()[:1], model.Owner{}, testNow, seqIDs())
	errs := ValidateBatch(b)
	require.Len(t, errs, 2)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Equal(t, 2, errs[1].Invariant)
	assert.Equal(t, "id-1", errs[0].RecordID)
}

func TestValidateBatch_Invariants(t *testing.T) {
	tests := []struct {
		name      string
		batch     Batch
		invariant int
	}{
		{
			name: "empty description",
			batch: Batch{Transactions: []model.Transaction{
				{ID: "t", FamilyID: "f", UserID: "u"},
			}},
			invariant: 3,
		},
		{
			name: "no installments left",
			batch: Batch{Debts: []model.Debt{
				{ID: "d", FamilyID: "f", UserID: "u", Description: "Carro"},
			}},
			invariant: 4,
		},
		{
			name: "due day zero",
			batch: Batch{Recurring: []model.RecurringExpense{
				{ID: "r", FamilyID: "f", UserID: "u", Description: "Luz"},
			}},
			invariant: 5,
		},
		{
			name: "due day past month end",
			batch: Batch{Recurring: []model.RecurringExpense{
				{ID: "r", FamilyID: "f", UserID: "u", Description: "Luz", DueDay: 32},
			}},
			invariant: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateBatch(tt.batch)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.invariant, errs[0].Invariant)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Invariant: 4, RecordID: "d-1", Description: "remaining installments 0 < 1"}
	assert.Equal(t, "invariant 4 [d-1]: remaining installments 0 < 1", e.Error())
}
