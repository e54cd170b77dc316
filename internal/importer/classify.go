package importer

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/doispes-dev/doispes/internal/model"
)

// RawRow holds a row's cell texts by position. An empty string is an absent cell.
type RawRow []string

// Positional layout of the ledger sheet. Columns 3 and 4 swap roles depending on content.
const (
	colDescription = 0
	colValue       = 1
	colDate        = 2
	colEntry       = 3
	colInstallment = 4
)

// dayCutoff is the last day of month still treated as a recurring bill's due day.
const dayCutoff = 10

// headerLabels are the upper-cased first-cell texts of a header row.
var headerLabels = []string{"DÍVIDAS", "DESCRIÇÃO"}

// Cell returns the text at column i, or "" when the row is shorter.
func (r RawRow) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// ColumnRole is the meaning resolved for one of the ambiguous trailing columns.
type ColumnRole int

const (
	RoleAbsent ColumnRole = iota
	RoleEntryValue
	RoleInstallmentText
)

func (r ColumnRole) String() string {
	switch r {
	case RoleEntryValue:
		return "entry_value"
	case RoleInstallmentText:
		return "installment_text"
	}
	return "absent"
}

// Trailing is the resolution of columns 3 and 4.
type Trailing struct {
	Col3, Col4      ColumnRole
	EntryValue      decimal.NullDecimal
	InstallmentText string
	entryDiscarded  bool // column 3 was meant as an entry value but is not numeric
}

// ResolveTrailing applies the ordered disambiguation rules to columns 3 and 4:
// installment notation in column 4 wins, then installment notation in column 3,
// otherwise column 3 is read as an entry value.
func ResolveTrailing(col3, col4 string) Trailing {
	var t Trailing
	switch {
	case IsInstallmentText(col4):
		t.Col4 = RoleInstallmentText
		t.InstallmentText = col4
		t.readEntry(col3)
	case IsInstallmentText(col3):
		t.Col3 = RoleInstallmentText
		t.InstallmentText = col3
	default:
		t.readEntry(col3)
	}
	return t
}

func (t *Trailing) readEntry(text string) {
	if text == "" {
		return
	}
	v, ok := parseDecimal(text)
	if !ok {
		t.entryDiscarded = true
		return
	}
	t.Col3 = RoleEntryValue
	t.EntryValue = decimal.NewNullDecimal(v)
}

// IsInstallmentText reports whether s looks like "<amount> x <count>".
// Any text holding both an "x" and a digit matches, so free text such as
// "Loja XV de Novembro 2" is taken as installment notation.
func IsInstallmentText(s string) bool {
	return strings.Contains(strings.ToLower(s), "x") && strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// ParseInstallments splits installment text on its first "x" into a per-period
// amount and a count. An empty amount falls back to value with the parsed count;
// any other failure yields count 1 and value, with ok false.
func ParseInstallments(text string, value decimal.Decimal) (count int, amount decimal.Decimal, ok bool) {
	left, right, found := strings.Cut(strings.ToLower(text), "x")
	if !found {
		return 1, value, false
	}

	count, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil || count < 1 {
		return 1, value, false
	}

	left = strings.TrimSpace(left)
	if left == "" {
		return count, value, true
	}
	left = strings.ReplaceAll(left, ".", "")
	left = strings.ReplaceAll(left, ",", ".")
	amount, err = decimal.NewFromString(left)
	if err != nil {
		return 1, value, false
	}
	return count, amount, true
}

// dateParser turns a date cell into a calendar date.
type dateParser func(string) (time.Time, bool)

// isoLayouts are tried in order; fractional seconds are accepted after any seconds field.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
}

// ParseISODate parses an ISO-8601 date or timestamp and keeps only its calendar date.
func ParseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// IsHeader reports whether a first-row first-cell text is a known header label.
func IsHeader(text string) bool {
	upper := cases.Upper(language.BrazilianPortuguese)
	label := upper.String(norm.NFC.String(strings.TrimSpace(text)))
	for _, h := range headerLabels {
		if label == h {
			return true
		}
	}
	return false
}

// classifyRows turns decoded rows into items, skipping a header row and invalid rows.
func classifyRows(rows []RawRow, parseDate dateParser) *Result {
	res := &Result{Stats: Stats{Rows: len(rows)}}
	if len(rows) > 0 && IsHeader(rows[0].Cell(colDescription)) {
		res.Stats.HeaderSkipped = true
		rows = rows[1:]
	}

	for _, row := range rows {
		if len(row) == 0 {
			res.Stats.EmptyRows++
			continue
		}
		item, ok := classifyRow(row, parseDate, &res.Stats)
		if !ok {
			res.Stats.DroppedRows++
			continue
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// classifyRow converts one row into an item. It reports false when the row has
// no description or no numeric value.
func classifyRow(row RawRow, parseDate dateParser, stats *Stats) (model.LedgerItem, bool) {
	desc := row.Cell(colDescription)
	value, ok := parseDecimal(row.Cell(colValue))
	if desc == "" || !ok {
		return model.LedgerItem{}, false
	}

	item := model.LedgerItem{
		Description: desc,
		Value:       value,
	}

	if raw := row.Cell(colDate); raw != "" {
		if d, ok := parseDate(raw); ok {
			item.Date = &d
		} else {
			stats.DateFallbacks++
		}
	}

	trailing := ResolveTrailing(row.Cell(colEntry), row.Cell(colInstallment))
	if trailing.entryDiscarded {
		stats.EntryValueFallbacks++
	}
	item.EntryValue = trailing.EntryValue
	item.InstallmentDetails = trailing.InstallmentText

	switch {
	case item.InstallmentDetails != "" && strings.Contains(strings.ToLower(item.InstallmentDetails), "x"):
		count, amount, ok := ParseInstallments(item.InstallmentDetails, value)
		if !ok {
			stats.InstallmentFallbacks++
		}
		item.Classification = model.ClassificationDebt
		item.InstallmentsCount = count
		item.InstallmentValue = decimal.NewNullDecimal(amount)
	case item.Date != nil && item.Date.Day() <= dayCutoff:
		item.Classification = model.ClassificationRecurring
	default:
		item.Classification = model.ClassificationExpense
	}
	return item, true
}
