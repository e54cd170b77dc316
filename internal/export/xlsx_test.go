package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/doispes-dev/doispes/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	due := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	items := []model.LedgerItem{
		{
			Description:    "Aluguel",
			Value:          decimal.RequireFromString("1500.00"),
			Date:           &due,
			Classification: model.ClassificationRecurring,
		},
		{
			Description:        "Celular",
			Value:              decimal.RequireFromString("2400"),
			InstallmentDetails: "200 x 12",
			Classification:     model.ClassificationDebt,
			InstallmentsCount:  12,
			InstallmentValue:   decimal.NewNullDecimal(decimal.RequireFromString("200")),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])

	assert.Equal(t, "Aluguel", rows[1][0])
	assert.Equal(t, "1500", rows[1][1])
	assert.Equal(t, "2026-01-05", rows[1][2])
	assert.Equal(t, "recurring", rows[1][5])

	assert.Equal(t, "Celular", rows[2][0])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "200 x 12", rows[2][4])
	assert.Equal(t, "debt", rows[2][5])
	assert.Equal(t, "12", rows[2][6])
	assert.Equal(t, "200", rows[2][7])
}

func TestWriteXLSX_NoItems(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteXLSX_ExactAmounts(t *testing.T) {
	items := []model.LedgerItem{{
		Description:        "Financiamento",
		Value:              decimal.RequireFromString("12345678901234567.89"),
		EntryValue:         decimal.NewNullDecimal(decimal.RequireFromString("0.10")),
		InstallmentDetails: "0,30 x 3",
		Classification:     model.ClassificationDebt,
		InstallmentsCount:  3,
		InstallmentValue:   decimal.NewNullDecimal(decimal.RequireFromString("0.30")),
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	for cell, want := range map[string]string{"B2": "12345678901234567.89", "D2": "0.1", "H2": "0.3"} {
		got, err := f.GetCellValue(SheetName, cell, raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, cell)

		typ, err := f.GetCellType(SheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, excelize.CellTypeUnset, typ, cell)
	}
}
