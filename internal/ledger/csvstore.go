package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/doispes-dev/doispes/internal/model"
)

// Collection file names under the ledger directory.
const (
	DebtsFile        = "debts.csv"
	RecurringFile    = "recurring-expenses.csv"
	TransactionsFile = "transactions.csv"
)

// CSVStore keeps each collection in an append-only CSV file.
type CSVStore struct {
	dir string
}

// NewCSVStore returns a store rooted at dir.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Dir returns the directory holding the collection files.
func (s *CSVStore) Dir() string { return s.dir }

// WriteBatch appends every record in b to its collection file. Each touched
// file is rewritten to a temp copy first; the copies replace the originals
// only after all of them are complete, so a failed batch leaves the ledger as
// it was.
func (s *CSVStore) WriteBatch(_ context.Context, b Batch) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	debts := make([][]string, len(b.Debts))
	for i, d := range b.Debts {
		debts[i] = MarshalDebt(d)
	}
	recurring := make([][]string, len(b.Recurring))
	for i, r := range b.Recurring {
		recurring[i] = MarshalRecurring(r)
	}
	txns := make([][]string, len(b.Transactions))
	for i, t := range b.Transactions {
		txns[i] = MarshalTransaction(t)
	}

	collections := []struct {
		name, header string
		rows         [][]string
	}{
		{DebtsFile, DebtsHeader, debts},
		{RecurringFile, RecurringHeader, recurring},
		{TransactionsFile, TransactionsHeader, txns},
	}

	staged := make(map[string]string) // collection file -> temp copy
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for _, c := range collections {
		if len(c.rows) == 0 {
			continue
		}
		tmp, err := s.stage(c.name, c.header, c.rows)
		if err != nil {
			return err
		}
		staged[c.name] = tmp
	}

	for _, c := range collections {
		tmp, ok := staged[c.name]
		if !ok {
			continue
		}
		if err := os.Rename(tmp, filepath.Join(s.dir, c.name)); err != nil {
			return fmt.Errorf("replacing %s: %w", c.name, err)
		}
		delete(staged, c.name)
	}
	return nil
}

// stage writes the current contents of name plus rows to a temp file in the
// ledger directory and returns its path. The header is written when name does
// not exist yet.
func (s *CSVStore) stage(name, header string, rows [][]string) (string, error) {
	path := filepath.Join(s.dir, name)

	var existing *os.File
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("opening %s: %w", name, err)
	case !info.Mode().IsRegular():
		return "", fmt.Errorf("opening %s: not a regular file", name)
	default:
		existing, err = os.Open(path)
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", name, err)
		}
		defer existing.Close()
		header = ""
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}

	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("staging %s: %w", name, err))
	}
	if existing != nil {
		if _, err := io.Copy(tmp, existing); err != nil {
			return fail(fmt.Errorf("copying %s: %w", name, err))
		}
	}
	if err := writeRecords(tmp, header, rows); err != nil {
		return fail(fmt.Errorf("appending to %s: %w", name, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing %s: %w", name, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("closing %s: %w", name, err)
	}
	return tmp.Name(), nil
}

// Debts returns the debts recorded for familyID, in file order.
func (s *CSVStore) Debts(_ context.Context, familyID string) ([]model.Debt, error) {
	records, err := s.read(DebtsFile, debtNumFields)
	if err != nil {
		return nil, err
	}
	var out []model.Debt
	for i, rec := range records {
		d, err := UnmarshalDebt(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", DebtsFile, i+2, err)
		}
		if d.FamilyID == familyID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Recurring returns the recurring expenses recorded for familyID.
func (s *CSVStore) Recurring(_ context.Context, familyID string) ([]model.RecurringExpense, error) {
	records, err := s.read(RecurringFile, recNumFields)
	if err != nil {
		return nil, err
	}
	var out []model.RecurringExpense
	for i, rec := range records {
		r, err := UnmarshalRecurring(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", RecurringFile, i+2, err)
		}
		if r.FamilyID == familyID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Transactions returns the transactions recorded for familyID.
func (s *CSVStore) Transactions(_ context.Context, familyID string) ([]model.Transaction, error) {
	records, err := s.read(TransactionsFile, txnNumFields)
	if err != nil {
		return nil, err
	}
	var out []model.Transaction
	for i, rec := range records {
		t, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", TransactionsFile, i+2, err)
		}
		if t.FamilyID == familyID {
			out = append(out, t)
		}
	}
	return out, nil
}

// Close is a no-op; files are opened per call.
func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) read(name string, numFields int) ([][]string, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := readRecords(f, numFields)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}
