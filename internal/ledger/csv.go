package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doispes-dev/doispes/internal/model"
)

// CSV headers, one file per collection.
const (
	DebtsHeader        = "id,family_id,user_id,description,total_value,remaining_installments,installment_value,entry_value,installment_details,date,created_at"
	RecurringHeader    = "id,family_id,user_id,description,amount,due_day,created_at"
	TransactionsHeader = "id,family_id,user_id,user_name,type,value,description,category,date,created_at"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = time.RFC3339

	debtNumFields    = 11
	debtColID        = 0
	debtColFamily    = 1
	debtColUser      = 2
	debtColDesc      = 3
	debtColTotal     = 4
	debtColRemaining = 5
	debtColInstValue = 6
	debtColEntry     = 7
	debtColDetails   = 8
	debtColDate      = 9
	debtColCreated   = 10

	recNumFields  = 7
	recColID      = 0
	recColFamily  = 1
	recColUser    = 2
	recColDesc    = 3
	recColAmount  = 4
	recColDueDay  = 5
	recColCreated = 6

	txnNumFields  = 10
	txnColID      = 0
	txnColFamily  = 1
	txnColUser    = 2
	txnColName    = 3
	txnColType    = 4
	txnColValue   = 5
	txnColDesc    = 6
	txnColCat     = 7
	txnColDate    = 8
	txnColCreated = 9
)

// MarshalDebt converts a Debt to a CSV row.
func MarshalDebt(d model.Debt) []string {
	row := make([]string, debtNumFields)
	row[debtColID] = d.ID
	row[debtColFamily] = d.FamilyID
	row[debtColUser] = d.UserID
	row[debtColDesc] = d.Description
	row[debtColTotal] = d.TotalValue.String()
	row[debtColRemaining] = strconv.Itoa(d.RemainingInstallments)
	row[debtColInstValue] = d.InstallmentValue.String()
	if d.EntryValue.Valid {
		row[debtColEntry] = d.EntryValue.Decimal.String()
	}
	row[debtColDetails] = d.InstallmentDetails
	if d.Date != nil {
		row[debtColDate] = d.Date.Format(dateFormat)
	}
	row[debtColCreated] = d.CreatedAt.UTC().Format(timestampFormat)
	return row
}

// UnmarshalDebt converts a CSV row to a Debt.
func UnmarshalDebt(record []string) (model.Debt, error) {
	if len(record) != debtNumFields {
		return model.Debt{}, fmt.Errorf("expected %d fields, got %d", debtNumFields, len(record))
	}

	total, err := decimal.NewFromString(record[debtColTotal])
	if err != nil {
		return model.Debt{}, fmt.Errorf("parsing total_value %q: %w", record[debtColTotal], err)
	}
	remaining, err := strconv.Atoi(record[debtColRemaining])
	if err != nil {
		return model.Debt{}, fmt.Errorf("parsing remaining_installments %q: %w", record[debtColRemaining], err)
	}
	instValue, err := decimal.NewFromString(record[debtColInstValue])
	if err != nil {
		return model.Debt{}, fmt.Errorf("parsing installment_value %q: %w", record[debtColInstValue], err)
	}

	var entry decimal.NullDecimal
	if record[debtColEntry] != "" {
		v, err := decimal.NewFromString(record[debtColEntry])
		if err != nil {
			return model.Debt{}, fmt.Errorf("parsing entry_value %q: %w", record[debtColEntry], err)
		}
		entry = decimal.NewNullDecimal(v)
	}

	var date *time.Time
	if record[debtColDate] != "" {
		d, err := time.Parse(dateFormat, record[debtColDate])
		if err != nil {
			return model.Debt{}, fmt.Errorf("parsing date %q: %w", record[debtColDate], err)
		}
		date = &d
	}

	created, err := time.Parse(timestampFormat, record[debtColCreated])
	if err != nil {
		return model.Debt{}, fmt.Errorf("parsing created_at %q: %w", record[debtColCreated], err)
	}

	return model.Debt{
		ID:                    record[debtColID],
		FamilyID:              record[debtColFamily],
		UserID:                record[debtColUser],
		Description:           record[debtColDesc],
		TotalValue:            total,
		RemainingInstallments: remaining,
		InstallmentValue:      instValue,
		EntryValue:            entry,
		InstallmentDetails:    record[debtColDetails],
		Date:                  date,
		CreatedAt:             created,
	}, nil
}

// MarshalRecurring converts a RecurringExpense to a CSV row.
func MarshalRecurring(r model.RecurringExpense) []string {
	row := make([]string, recNumFields)
	row[recColID] = r.ID
	row[recColFamily] = r.FamilyID
	row[recColUser] = r.UserID
	row[recColDesc] = r.Description
	row[recColAmount] = r.Amount.String()
	row[recColDueDay] = strconv.Itoa(r.DueDay)
	row[recColCreated] = r.CreatedAt.UTC().Format(timestampFormat)
	return row
}

// UnmarshalRecurring converts a CSV row to a RecurringExpense.
func UnmarshalRecurring(record []string) (model.RecurringExpense, error) {
	if len(record) != recNumFields {
		return model.RecurringExpense{}, fmt.Errorf("expected %d fields, got %d", recNumFields, len(record))
	}

	amount, err := decimal.NewFromString(record[recColAmount])
	if err != nil {
		return model.RecurringExpense{}, fmt.Errorf("parsing amount %q: %w", record[recColAmount], err)
	}
	dueDay, err := strconv.Atoi(record[recColDueDay])
	if err != nil {
		return model.RecurringExpense{}, fmt.Errorf("parsing due_day %q: %w", record[recColDueDay], err)
	}
	created, err := time.Parse(timestampFormat, record[recColCreated])
	if err != nil {
		return model.RecurringExpense{}, fmt.Errorf("parsing created_at %q: %w", record[recColCreated], err)
	}

	return model.RecurringExpense{
		ID:          record[recColID],
		FamilyID:    record[recColFamily],
		UserID:      record[recColUser],
		Description: record[recColDesc],
		Amount:      amount,
		DueDay:      dueDay,
		CreatedAt:   created,
	}, nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnNumFields)
	row[txnColID] = t.ID
	row[txnColFamily] = t.FamilyID
	row[txnColUser] = t.UserID
	row[txnColName] = t.UserName
	row[txnColType] = string(t.Type)
	row[txnColValue] = t.Value.String()
	row[txnColDesc] = t.Description
	row[txnColCat] = t.Category
	row[txnColDate] = t.Date.Format(dateFormat)
	row[txnColCreated] = t.CreatedAt.UTC().Format(timestampFormat)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnNumFields, len(record))
	}

	value, err := decimal.NewFromString(record[txnColValue])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing value %q: %w", record[txnColValue], err)
	}
	date, err := time.Parse(dateFormat, record[txnColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[txnColDate], err)
	}
	created, err := time.Parse(timestampFormat, record[txnColCreated])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing created_at %q: %w", record[txnColCreated], err)
	}

	return model.Transaction{
		ID:          record[txnColID],
		FamilyID:    record[txnColFamily],
		UserID:      record[txnColUser],
		UserName:    record[txnColName],
		Type:        model.TransactionType(record[txnColType]),
		Value:       value,
		Description: record[txnColDesc],
		Category:    record[txnColCat],
		Date:        date,
		CreatedAt:   created,
	}, nil
}

// readRecords reads a collection file, skipping its header row.
func readRecords(r io.Reader, numFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

// writeRecords writes rows, preceded by header when it is non-empty.
func writeRecords(w io.Writer, header string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if header != "" {
		if err := cw.Write(strings.Split(header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
