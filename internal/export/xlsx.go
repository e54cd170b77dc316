// Package export writes imported ledger items to a review workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/doispes-dev/doispes/internal/model"
)

// SheetName is the worksheet holding the exported items.
const SheetName = "Ledger"

// Headers are the review workbook's column titles.
var Headers = []string{
	"Descrição",
	"Valor",
	"Data",
	"Entrada",
	"Parcelamento",
	"Classificação",
	"Parcelas",
	"Valor da Parcela",
}

// WriteXLSX writes items to w as a single-sheet workbook, one row per item.
// Amounts are numeric cells; absent optional fields are left blank.
func WriteXLSX(w io.Writer, items []model.LedgerItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, it := range items {
		if err := writeItem(f, i+2, it); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	for _, c := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 32}, // description
		{"B", "D", 14}, // value, date, entry
		{"E", "E", 20}, // installment text
		{"F", "H", 16},
	} {
		if err := f.SetColWidth(SheetName, c.from, c.to, c.width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// Amount columns, 1-based.
const (
	colValue            = 2
	colEntryValue       = 4
	colInstallmentValue = 8
)

// writeItem writes one item at row. Amounts go in as their decimal text so the
// numeric cell holds the exact value.
func writeItem(f *excelize.File, row int, it model.LedgerItem) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := []any{
		it.Description,
		nil,
		"",
		nil,
		it.InstallmentDetails,
		string(it.Classification),
		"",
		nil,
	}
	if it.Date != nil {
		values[2] = it.Date.Format("2006-01-02")
	}
	if it.IsDebt() {
		values[6] = it.InstallmentsCount
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return err
	}

	if err := setAmount(f, colValue, row, it.Value); err != nil {
		return err
	}
	if it.EntryValue.Valid {
		if err := setAmount(f, colEntryValue, row, it.EntryValue.Decimal); err != nil {
			return err
		}
	}
	if it.IsDebt() && it.InstallmentValue.Valid {
		if err := setAmount(f, colInstallmentValue, row, it.InstallmentValue.Decimal); err != nil {
			return err
		}
	}
	return nil
}

func setAmount(f *excelize.File, col, row int, d decimal.Decimal) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellDefault(SheetName, cell, d.String())
}
