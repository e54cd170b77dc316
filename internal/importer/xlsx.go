package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// XLSXParser parses ledger sheets saved as modern Excel workbooks. It reads the
// first sheet with the same positional layout as the SpreadsheetML export.
type XLSXParser struct{}

// Format returns the parser name.
func (p *XLSXParser) Format() string { return "xlsx" }

// Extensions returns the file extensions this parser reads.
func (p *XLSXParser) Extensions() []string { return []string{".xlsx"} }

// Parse reads the first sheet and classifies its rows.
func (p *XLSXParser) Parse(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &StructureError{Format: p.Format(), Reason: ErrMalformed, Cause: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &StructureError{Format: p.Format(), Reason: ErrNoWorksheet}
	}

	// Raw values keep amounts unformatted and dates as serial numbers.
	cells, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &StructureError{Format: p.Format(), Reason: ErrNoTable, Cause: err}
	}

	rows := make([]RawRow, len(cells))
	for i, c := range cells {
		rows[i] = RawRow(c)
	}
	return classifyRows(rows, parseWorkbookDate), nil
}

// parseWorkbookDate accepts ISO text or an Excel serial date.
func parseWorkbookDate(s string) (time.Time, bool) {
	if t, ok := ParseISODate(s); ok {
		return t, true
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}
