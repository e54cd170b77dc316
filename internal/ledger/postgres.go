package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doispes-dev/doispes/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS debts (
	seq BIGSERIAL,
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	total_value NUMERIC NOT NULL,
	remaining_installments INTEGER NOT NULL,
	installment_value NUMERIC NOT NULL,
	entry_value NUMERIC,
	installment_details TEXT NOT NULL DEFAULT '',
	date DATE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS recurring_expenses (
	seq BIGSERIAL,
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	description TEXT NOT NULL,
	amount NUMERIC NOT NULL,
	due_day INTEGER NOT NULL CHECK (due_day BETWEEN 1 AND 31),
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	seq BIGSERIAL,
	id TEXT PRIMARY KEY,
	family_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	user_name TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	value NUMERIC NOT NULL,
	description TEXT NOT NULL,
	category TEXT NOT NULL,
	date DATE NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS debts_family ON debts(family_id);
CREATE INDEX IF NOT EXISTS recurring_family ON recurring_expenses(family_id);
CREATE INDEX IF NOT EXISTS transactions_family ON transactions(family_id);
`

// Timestamps are read back as text in the same layout the CSV files use.
const pgTimestamp = `to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')`

// PostgresStore keeps the ledger in PostgreSQL, for families sharing one server.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url, verifies the connection and ensures the schema exists.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// WriteBatch inserts the whole batch in one transaction.
func (s *PostgresStore) WriteBatch(ctx context.Context, b Batch) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	for _, d := range b.Debts {
		var entry *string
		if d.EntryValue.Valid {
			v := d.EntryValue.Decimal.String()
			entry = &v
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO debts (id, family_id, user_id, description, total_value,
				remaining_installments, installment_value, entry_value,
				installment_details, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			d.ID, d.FamilyID, d.UserID, d.Description, d.TotalValue.String(),
			d.RemainingInstallments, d.InstallmentValue.String(), entry,
			d.InstallmentDetails, d.Date, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert debt %s: %w", d.ID, err)
		}
	}

	for _, r := range b.Recurring {
		_, err := tx.Exec(ctx, `
			INSERT INTO recurring_expenses (id, family_id, user_id, description, amount, due_day, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.ID, r.FamilyID, r.UserID, r.Description, r.Amount.String(), r.DueDay, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert recurring expense %s: %w", r.ID, err)
		}
	}

	for _, t := range b.Transactions {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, family_id, user_id, user_name, type, value,
				description, category, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, t.FamilyID, t.UserID, t.UserName, string(t.Type), t.Value.String(),
			t.Description, t.Category, t.Date, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Debts returns the debts recorded for familyID, in insertion order.
func (s *PostgresStore) Debts(ctx context.Context, familyID string) ([]model.Debt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, family_id, user_id, description, total_value::text,
			remaining_installments::text, installment_value::text,
			COALESCE(entry_value::text, ''), installment_details,
			COALESCE(to_char(date, 'YYYY-MM-DD'), ''), `+pgTimestamp+`
		FROM debts WHERE family_id = $1 ORDER BY seq`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	return collectRecords(rows, debtNumFields, UnmarshalDebt)
}

// Recurring returns the recurring expenses recorded for familyID.
func (s *PostgresStore) Recurring(ctx context.Context, familyID string) ([]model.RecurringExpense, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, family_id, user_id, description, amount::text, due_day::text, `+pgTimestamp+`
		FROM recurring_expenses WHERE family_id = $1 ORDER BY seq`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query recurring expenses: %w", err)
	}
	return collectRecords(rows, recNumFields, UnmarshalRecurring)
}

// Transactions returns the transactions recorded for familyID.
func (s *PostgresStore) Transactions(ctx context.Context, familyID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, family_id, user_id, user_name, type, value::text, description, category,
			to_char(date, 'YYYY-MM-DD'), `+pgTimestamp+`
		FROM transactions WHERE family_id = $1 ORDER BY seq`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return collectRecords(rows, txnNumFields, UnmarshalTransaction)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// collectRecords scans all-text rows into CSV-shaped records and decodes them with unmarshal.
func collectRecords[T any](rows pgx.Rows, numFields int, unmarshal func([]string) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec := make([]string, numFields)
		dest := make([]any, numFields)
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		v, err := unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec[0], err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
