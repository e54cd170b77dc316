package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doispes-dev/doispes/internal/model"
)

// Store persists import batches and reads them back per family.
type Store interface {
	WriteBatch(ctx context.Context, b Batch) error
	Debts(ctx context.Context, familyID string) ([]model.Debt, error)
	Recurring(ctx context.Context, familyID string) ([]model.RecurringExpense, error)
	Transactions(ctx context.Context, familyID string) ([]model.Transaction, error)
	Close() error
}

// Storage drivers.
const (
	DriverCSV      = "csv"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates a store.
type Options struct {
	Driver string
	Path   string // csv directory or sqlite file; relative paths resolve against the repository root
	URL    string // postgres connection URL
}

// Open returns the store described by opts.
func Open(ctx context.Context, opts Options, repoRoot string) (Store, error) {
	path := opts.Path
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	switch opts.Driver {
	case DriverCSV, "":
		if path == "" {
			path = filepath.Join(repoRoot, "ledger")
		}
		return NewCSVStore(path), nil
	case DriverSQLite:
		if path == "" {
			path = filepath.Join(repoRoot, "ledger", "ledger.db")
		}
		return OpenSQLite(ctx, path)
	case DriverPostgres:
		if opts.URL == "" {
			return nil, fmt.Errorf("postgres storage needs a database URL")
		}
		return OpenPostgres(ctx, opts.URL)
	}
	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}

// Write validates b and writes it to s. Nothing is written when validation fails.
func Write(ctx context.Context, s Store, b Batch) error {
	if verrs := ValidateBatch(b); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	if b.Len() == 0 {
		return nil
	}
	return s.WriteBatch(ctx, b)
}
