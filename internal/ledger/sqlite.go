package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/doispes-dev/doispes/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS debts (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	total_value TEXT NOT NULL,
	remaining_installments INTEGER NOT NULL,
	installment_value TEXT NOT NULL,
	entry_value TEXT,
	installment_details TEXT NOT NULL DEFAULT '',
	date TEXT,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS recurring_expenses (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	amount TEXT NOT NULL,
	due_day INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	date TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS debts_family ON debts(family_id);
CREATE INDEX IF NOT EXISTS recurring_family ON recurring_expenses(family_id);
CREATE INDEX IF NOT EXISTS transactions_family ON transactions(family_id);
`

// SQLiteStore keeps the ledger in a single SQLite database. Amounts are stored
// as decimal text so no precision is lost.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// WriteBatch inserts the whole batch in one transaction.
func (s *SQLiteStore) WriteBatch(ctx context.Context, b Batch) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, d := range b.Debts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO debts (id, family_id, user_id, description, total_value,
				remaining_installments, installment_value, entry_value,
				installment_details, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.FamilyID, d.UserID, d.Description, d.TotalValue.String(),
			d.RemainingInstallments, d.InstallmentValue.String(), nullDecimal(d.EntryValue),
			d.InstallmentDetails, nullDate(d.Date), d.CreatedAt.UTC().Format(timestampFormat))
		if err != nil {
			return fmt.Errorf("insert debt %s: %w", d.ID, err)
		}
	}

	for _, r := range b.Recurring {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO recurring_expenses (id, family_id, user_id, description, amount, due_day, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.FamilyID, r.UserID, r.Description, r.Amount.String(), r.DueDay,
			r.CreatedAt.UTC().Format(timestampFormat))
		if err != nil {
			return fmt.Errorf("insert recurring expense %s: %w", r.ID, err)
		}
	}

	for _, t := range b.Transactions {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO transactions (id, family_id, user_id, user_name, type, value,
				description, category, date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.FamilyID, t.UserID, t.UserName, string(t.Type), t.Value.String(),
			t.Description, t.Category, t.Date.Format(dateFormat), t.CreatedAt.UTC().Format(timestampFormat))
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Debts returns the debts recorded for familyID, in insertion order.
func (s *SQLiteStore) Debts(ctx context.Context, familyID string) ([]model.Debt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family_id, user_id, description, total_value, remaining_installments,
			installment_value, entry_value, installment_details, date, created_at
		FROM debts WHERE family_id = ? ORDER BY rowid ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var out []model.Debt
	for rows.Next() {
		var (
			rec         = make([]string, debtNumFields)
			remaining   int
			entry, date sql.NullString
		)
		if err := rows.Scan(&rec[debtColID], &rec[debtColFamily], &rec[debtColUser], &rec[debtColDesc],
			&rec[debtColTotal], &remaining, &rec[debtColInstValue], &entry,
			&rec[debtColDetails], &date, &rec[debtColCreated]); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		rec[debtColRemaining] = fmt.Sprint(remaining)
		rec[debtColEntry] = entry.String
		rec[debtColDate] = date.String
		d, err := UnmarshalDebt(rec)
		if err != nil {
			return nil, fmt.Errorf("debt %s: %w", rec[debtColID], err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Recurring returns the recurring expenses recorded for familyID.
func (s *SQLiteStore) Recurring(ctx context.Context, familyID string) ([]model.RecurringExpense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family_id, user_id, description, amount, due_day, created_at
		FROM recurring_expenses WHERE family_id = ? ORDER BY rowid ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query recurring expenses: %w", err)
	}
	defer rows.Close()

	var out []model.RecurringExpense
	for rows.Next() {
		var (
			r              model.RecurringExpense
			amount, create string
		)
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.UserID, &r.Description, &amount, &r.DueDay, &create); err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("recurring expense %s amount: %w", r.ID, err)
		}
		if r.CreatedAt, err = time.Parse(timestampFormat, create); err != nil {
			return nil, fmt.Errorf("recurring expense %s created_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Transactions returns the transactions recorded for familyID.
func (s *SQLiteStore) Transactions(ctx context.Context, familyID string) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, family_id, user_id, user_name, type, value, description, category, date, created_at
		FROM transactions WHERE family_id = ? ORDER BY rowid ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		rec := make([]string, txnNumFields)
		if err := rows.Scan(&rec[txnColID], &rec[txnColFamily], &rec[txnColUser], &rec[txnColName],
			&rec[txnColType], &rec[txnColValue], &rec[txnColDesc], &rec[txnColCat],
			&rec[txnColDate], &rec[txnColCreated]); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", rec[txnColID], err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}
