package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/config"
	"github.com/doispes-dev/doispes/internal/gitops"
	"github.com/doispes-dev/doispes/internal/importer"
	"github.com/doispes-dev/doispes/internal/importlog"
	"github.com/doispes-dev/doispes/internal/ledger"
	"github.com/doispes-dev/doispes/internal/logging"
	"github.com/doispes-dev/doispes/internal/model"
)

type importOptions struct {
	repoDir string
	format  string
	dryRun  bool
	keep    bool
}

// importTarget is one file to import. Scanned files live in import/ and are
// moved to import/processed/ afterwards.
type importTarget struct {
	path    string
	name    string
	parser  importer.Parser
	scanned bool
}

func newImportCommand(g *globalOptions) *cobra.Command {
	var o importOptions

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import ledger spreadsheets into debts, recurring expenses and transactions",
		Long: "Import parses each file given, or every importable file in the repository's\n" +
			"import/ directory, classifies its rows and writes the records to the ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadRepo(cmd, g, o.repoDir)
			if err != nil {
				return err
			}
			return runImport(cmd, root, cfg, args, o)
		},
	}

	cmd.Flags().StringVar(&o.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&o.format, "format", "", "parser to use instead of detecting by extension")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "parse and report without writing anything")
	cmd.Flags().BoolVar(&o.keep, "keep", false, "leave scanned files in import/")

	return cmd
}

func runImport(cmd *cobra.Command, root string, cfg *config.Config, args []string, o importOptions) error {
	ctx := logging.WithRunID(cmd.Context(), uuid.NewString())
	logger := logging.FromContext(ctx)
	out := cmd.OutOrStdout()
	reg := importer.DefaultRegistry()

	targets, err := importTargets(reg, root, args, o.format)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(out, "Nothing to import.")
		return nil
	}

	var store ledger.Store
	if !o.dryRun {
		store, err = ledger.Open(ctx, storageOptions(cfg), root)
		if err != nil {
			return fmt.Errorf("opening ledger: %w", err)
		}
		defer store.Close()
	}

	owner := model.Owner{
		FamilyID: cfg.Owner.FamilyID,
		UserID:   cfg.Owner.UserID,
		UserName: cfg.Owner.UserName,
	}

	var (
		entries []importlog.Entry
		failed  []string
		written int
	)
	for _, t := range targets {
		res, err := parseFile(t)
		if err != nil {
			logger.Error("import failed", "file", t.name, "format", t.parser.Format(), "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", t.name, err)
			failed = append(failed, t.name)
			continue
		}
		logStats(logger, t, res)

		entry := importlog.Entry{
			Timestamp: time.Now(),
			Source:    t.name,
			Format:    t.parser.Format(),
			Items:     len(res.Items),
			Skipped:   res.Stats.Skipped(),
			Debts:     res.Count(model.ClassificationDebt),
			Recurring: res.Count(model.ClassificationRecurring),
			Expenses:  res.Count(model.ClassificationExpense),
		}
		fmt.Fprintf(out, "%s (%s): %d items: %d debts, %d recurring, %d expenses (%d rows skipped)\n",
			entry.Source, entry.Format, entry.Items, entry.Debts, entry.Recurring, entry.Expenses, entry.Skipped)

		if o.dryRun {
			continue
		}

		batch := ledger.NewBatch(res.Items, owner, entry.Timestamp, nil)
		if err := ledger.Write(ctx, store, batch); err != nil {
			logger.Error("writing ledger failed", "file", t.name, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", t.name, err)
			failed = append(failed, t.name)
			continue
		}
		written += batch.Len()
		entries = append(entries, entry)

		if t.scanned && !o.keep {
			if err := importer.MarkProcessed(root, t.name); err != nil {
				return err
			}
		}
	}

	if o.dryRun {
		fmt.Fprintln(out, "Dry run: nothing written.")
	} else if len(entries) > 0 {
		fmt.Fprintf(out, "Wrote %d records from %d file(s).\n", written, len(entries))
		if err := recordImport(ctx, out, root, cfg, entries); err != nil {
			return err
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d file(s) failed: %s", len(failed), len(targets), strings.Join(failed, ", "))
	}
	return nil
}

// importTargets resolves the files to import: args when given, otherwise the import/ directory.
func importTargets(reg *importer.Registry, root string, args []string, format string) ([]importTarget, error) {
	var forced importer.Parser
	if format != "" {
		forced = reg.Get(format)
		if forced == nil {
			return nil, fmt.Errorf("unknown format %q (known: %s)", format, strings.Join(reg.Formats(), ", "))
		}
	}

	if len(args) == 0 {
		files, err := reg.Scan(root)
		if err != nil {
			return nil, err
		}
		targets := make([]importTarget, len(files))
		for i, f := range files {
			p := forced
			if p == nil {
				p = reg.Get(f.Format)
			}
			targets[i] = importTarget{path: f.Path, name: f.Name, parser: p, scanned: true}
		}
		return targets, nil
	}

	targets := make([]importTarget, len(args))
	for i, arg := range args {
		p := forced
		if p == nil {
			p = reg.ForFile(arg)
		}
		if p == nil {
			return nil, fmt.Errorf("%s: no parser for extension %q; use --format", arg, filepath.Ext(arg))
		}
		targets[i] = importTarget{path: arg, name: filepath.Base(arg), parser: p}
	}
	return targets, nil
}

func parseFile(t importTarget) (*importer.Result, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	defer f.Close()
	return t.parser.Parse(f)
}

func logStats(logger *slog.Logger, t importTarget, res *importer.Result) {
	s := res.Stats
	logger.Info("file parsed",
		"file", t.name,
		"format", t.parser.Format(),
		"rows", s.Rows,
		"items", len(res.Items),
		"header_skipped", s.HeaderSkipped,
		"empty_rows", s.EmptyRows,
		"dropped_rows", s.DroppedRows,
	)
	if s.DateFallbacks+s.EntryValueFallbacks+s.InstallmentFallbacks > 0 {
		logger.Warn("fields degraded",
			"file", t.name,
			"date_fallbacks", s.DateFallbacks,
			"entry_value_fallbacks", s.EntryValueFallbacks,
			"installment_fallbacks", s.InstallmentFallbacks,
		)
	}
}

// recordImport commits the imported records when auto-commit is on, then
// appends the run to the import log and commits the log.
func recordImport(ctx context.Context, out io.Writer, root string, cfg *config.Config, entries []importlog.Entry) error {
	commit := cfg.Git.AutoCommit && gitops.IsRepo(root)
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}

	if commit {
		sources := make([]string, len(entries))
		for i, e := range entries {
			sources[i] = e.Source
		}
		hash, err := gitops.CommitAll(ctx, root, "import: "+strings.Join(sources, ", "), author)
		if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
			return fmt.Errorf("committing import: %w", err)
		}
		for i := range entries {
			entries[i].CommitHash = hash
		}
		if hash != "" {
			fmt.Fprintf(out, "Committed %s.\n", hash)
		}
	}

	if err := importlog.Append(root, entries); err != nil {
		return fmt.Errorf("writing import log: %w", err)
	}

	if commit {
		_, err := gitops.CommitAll(ctx, root, "log: import run", author)
		if err != nil && !errors.Is(err, gitops.ErrNothingToCommit) {
			return fmt.Errorf("committing import log: %w", err)
		}
	}
	return nil
}
