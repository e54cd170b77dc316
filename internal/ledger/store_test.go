package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doispes-dev/doispes/internal/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	csvStore, err := Open(ctx, Options{Driver: DriverCSV}, t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := Open(ctx, Options{Driver: DriverSQLite}, t.TempDir())
	require.NoError(t, err)

	stores := map[string]Store{DriverCSV: csvStore, DriverSQLite: sqliteStore}
	if pg := postgresForTest(t); pg != nil {
		stores[DriverPostgres] = pg
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_WriteAndRead(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			b := NewBatch(sampleItems(), testOwner, testNow, seqIDs())
			require.NoError(t, Write(ctx, s, b))

			debts, err := s.Debts(ctx, "fam-1")
			require.NoError(t, err)
			require.Len(t, debts, 1)
			assert.Equal(t, "Empréstimo Carro", debts[0].Description)
			assert.True(t, debts[0].EntryValue.Valid)
			assert.Equal(t, 12, debts[0].RemainingInstallments)
			require.NotNil(t, debts[0].Date)
			assert.Equal(t, date(2026, 1, 15), *debts[0].Date)

			recurring, err := s.Recurring(ctx, "fam-1")
			require.NoError(t, err)
			require.Len(t, recurring, 1)
			assert.Equal(t, 5, recurring[0].DueDay)
			assert.True(t, recurring[0].Amount.Equal(dec("1500")))

			txns, err := s.Transactions(ctx, "fam-1")
			require.NoError(t, err)
			require.Len(t, txns, 2)
			assert.Equal(t, "Supermercado", txns[0].Description)
			assert.Equal(t, "Internet", txns[1].Description)
			assert.True(t, txns[0].CreatedAt.Equal(testNow))
		})
	}
}

func TestStore_FiltersByFamily(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			other := model.Owner{FamilyID: "fam-2", UserID: "user-9"}
			require.NoError(t, Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil)))
			require.NoError(t, Write(ctx, s, NewBatch(sampleItems()[2:3], other, testNow, nil)))

			txns, err := s.Transactions(ctx, "fam-2")
			require.NoError(t, err)
			require.Len(t, txns, 1)
			assert.Equal(t, "user-9", txns[0].UserID)

			debts, err := s.Debts(ctx, "fam-2")
			require.NoError(t, err)
			assert.Empty(t, debts)

			txns, err = s.Transactions(ctx, "fam-1")
			require.NoError(t, err)
			assert.Len(t, txns, 2)
		})
	}
}

func TestStore_AppendsAcrossBatches(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil)))
			require.NoError(t, Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil)))

			recurring, err := s.Recurring(ctx, "fam-1")
			require.NoError(t, err)
			assert.Len(t, recurring, 2)
		})
	}
}

func TestStore_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			debts, err := s.Debts(ctx, "fam-1")
			require.NoError(t, err)
			assert.Empty(t, debts)
		})
	}
}

func TestWrite_RejectsInvalidBatch(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			b := NewBatch(sampleItems(), model.Owner{}, testNow, nil)
			err := Write(ctx, s, b)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Contains(t, err.Error(), "missing family id")

			txns, err := s.Transactions(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, txns)
		})
	}
}

func TestCSVStore_HeaderWrittenOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)

	require.NoError(t, s.WriteBatch(ctx, NewBatch(sampleItems(), testOwner, testNow, nil)))
	require.NoError(t, s.WriteBatch(ctx, NewBatch(sampleItems(), testOwner, testNow, nil)))

	data, err := os.ReadFile(filepath.Join(dir, TransactionsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, TransactionsHeader, lines[0])
	assert.Equal(t, 1, strings.Count(string(data), TransactionsHeader))
}

func TestCSVStore_OnlyTouchedCollectionsCreated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)

	require.NoError(t, s.WriteBatch(ctx, NewBatch(sampleItems()[2:3], testOwner, testNow, nil)))

	_, err := os.Stat(filepath.Join(dir, TransactionsFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, DebtsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestCSVStore_FailedBatchWritesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)

	require.NoError(t, s.WriteBatch(ctx, NewBatch(sampleItems()[1:2], testOwner, testNow, nil)))
	require.NoError(t, os.Mkdir(filepath.Join(dir, RecurringFile), 0o755))

	err := Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), RecurringFile)

	debts, err := s.Debts(ctx, testOwner.FamilyID)
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "Empréstimo Carro", debts[0].Description)

	_, err = os.Stat(filepath.Join(dir, TransactionsFile))
	assert.True(t, os.IsNotExist(err))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCSVStore_FailedFirstBatchLeavesNoDebts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewCSVStore(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, RecurringFile), 0o755))

	require.Error(t, Write(ctx, s, NewBatch(sampleItems(), testOwner, testNow, nil)))

	debts, err := s.Debts(ctx, testOwner.FamilyID)
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s, err := Open(ctx, Options{Driver: DriverCSV, Path: "books"}, root)
	require.NoError(t, err)
	csvStore, ok := s.(*CSVStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "books"), csvStore.Dir())

	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: "data/ledger.db"}, root)
	require.NoError(t, err)
	_, ok = s.(*SQLiteStore)
	assert.True(t, ok)
	require.NoError(t, s.Close())
	_, err = os.Stat(filepath.Join(root, "data", "ledger.db"))
	assert.NoError(t, err)

	_, err = Open(ctx, Options{Driver: DriverPostgres}, root)
	assert.ErrorContains(t, err, "postgres storage needs a database URL")

	_, err = Open(ctx, Options{Driver: "mongodb"}, root)
	assert.ErrorContains(t, err, `unknown storage driver "mongodb"`)
}
