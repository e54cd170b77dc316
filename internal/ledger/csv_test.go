package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doispes-dev/doispes/internal/model"
)

func TestMarshalDebt_NullableColumns(t *testing.T) {
	d := model.Debt{
		ID:                    "d-1",
		FamilyID:              "fam",
		UserID:                "u",
		Description:           "Celular",
		TotalValue:            dec("2400"),
		RemainingInstallments: 12,
		InstallmentValue:      dec("200"),
		CreatedAt:             testNow,
	}
	row := MarshalDebt(d)
	assert.Equal(t, "", row[debtColEntry])
	assert.Equal(t, "", row[debtColDate])
	assert.Equal(t, "2026-03-14T09:30:00Z", row[debtColCreated])

	back, err := UnmarshalDebt(row)
	require.NoError(t, err)
	assert.False(t, back.EntryValue.Valid)
	assert.Nil(t, back.Date)
	assert.Equal(t, 12, back.RemainingInstallments)
}

func TestMarshalDebt_FullRow(t *testing.T) {
	d := model.Debt{
		ID:                    "d-2",
		FamilyID:              "fam",
		UserID:                "u",
		Description:           "Empréstimo, Carro",
		TotalValue:            dec("12568.00"),
		RemainingInstallments: 12,
		InstallmentValue:      dec("964.00"),
		EntryValue:            decimal.NewNullDecimal(dec("1000.00")),
		InstallmentDetails:    "964,00 x 12",
		Date:                  datePtr(2026, 1, 15),
		CreatedAt:             testNow,
	}

	var buf bytes.Buffer
	require.NoError(t, writeRecords(&buf, DebtsHeader, [][]string{MarshalDebt(d)}))
	// Commas in free text are quoted.
	assert.Contains(t, buf.String(), `"Empréstimo, Carro"`)

	records, err := readRecords(&buf, debtNumFields)
	require.NoError(t, err)
	require.Len(t, records, 1)

	back, err := UnmarshalDebt(records[0])
	require.NoError(t, err)
	assert.Equal(t, d.Description, back.Description)
	assert.True(t, back.EntryValue.Decimal.Equal(dec("1000")))
	assert.Equal(t, "964,00 x 12", back.InstallmentDetails)
	assert.Equal(t, *d.Date, *back.Date)
	assert.True(t, back.CreatedAt.Equal(testNow))
}

func TestUnmarshalDebt_Errors(t *testing.T) {
	good := MarshalDebt(model.Debt{ID: "d", TotalValue: dec("1"), InstallmentValue: dec("1"), RemainingInstallments: 1, CreatedAt: testNow})

	tests := []struct {
		name string
		col  int
		val  string
	}{
		{"total", debtColTotal, "abc"},
		{"remaining", debtColRemaining, "twelve"},
		{"installment value", debtColInstValue, "1,5"},
		{"entry", debtColEntry, "x"},
		{"date", debtColDate, "15/01/2026"},
		{"created", debtColCreated, "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := append([]string(nil), good...)
			rec[tt.col] = tt.val
			_, err := UnmarshalDebt(rec)
			assert.Error(t, err)
		})
	}

	_, err := UnmarshalDebt(good[:5])
	assert.ErrorContains(t, err, "expected 11 fields, got 5")
}

func TestRecurringRow(t *testing.T) {
	r := model.RecurringExpense{
		ID: "r-1", FamilyID: "fam", UserID: "u", Description: "Aluguel",
		Amount: dec("1500.00"), DueDay: 5, CreatedAt: testNow,
	}
	back, err := UnmarshalRecurring(MarshalRecurring(r))
	require.NoError(t, err)
	assert.Equal(t, 5, back.DueDay)
	assert.True(t, back.Amount.Equal(r.Amount))

	rec := MarshalRecurring(r)
	rec[recColDueDay] = "cinco"
	_, err = UnmarshalRecurring(rec)
	assert.Error(t, err)
}

func TestTransactionRow(t *testing.T) {
	tx := model.Transaction{
		ID: "t-1", FamilyID: "fam", UserID: "u", UserName: "Ana",
		Type: model.TransactionExpense, Value: dec("230.50"), Description: "Supermercado",
		Category: model.DefaultCategory, Date: date(2026, 1, 20), CreatedAt: testNow,
	}
	row := MarshalTransaction(tx)
	assert.Equal(t, "Despesa", row[txnColType])
	assert.Equal(t, "2026-01-20", row[txnColDate])

	back, err := UnmarshalTransaction(row)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionExpense, back.Type)
	assert.Equal(t, "Outros", back.Category)
	assert.True(t, back.Value.Equal(dec("230.5")))
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	records, err := readRecords(strings.NewReader(RecurringHeader+"\n"), recNumFields)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecords_WrongFieldCount(t *testing.T) {
	_, err := readRecords(strings.NewReader(RecurringHeader+"\na,b,c\n"), recNumFields)
	assert.Error(t, err)
}
