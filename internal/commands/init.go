package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/config"
	"github.com/doispes-dev/doispes/internal/gitops"
	"github.com/doispes-dev/doispes/internal/ledger"
)

type initOptions struct {
	familyID string
	userID   string
	userName string
	driver   string
	git      bool
}

func newInitCommand() *cobra.Command {
	var o initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new family ledger repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, o)
		},
	}

	cmd.Flags().StringVar(&o.familyID, "family", "", "family id records belong to (required)")
	_ = cmd.MarkFlagRequired("family")
	cmd.Flags().StringVar(&o.userID, "user", "", "id of the user importing (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&o.userName, "user-name", "", "display name stored on transactions")
	cmd.Flags().StringVar(&o.driver, "driver", ledger.DriverCSV, "ledger storage: csv, sqlite or postgres")
	cmd.Flags().BoolVar(&o.git, "git", false, "initialize a git repository and enable auto-commit")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, o initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default(o.familyID, o.userID)
	cfg.Owner.UserName = o.userName
	cfg.Storage.Driver = o.driver
	cfg.Git.AutoCommit = o.git
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"ledger",
		"logs",
		"exports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Review workbooks and the SQLite journal files are not versioned.
	gitignore := "exports/\n*.db-journal\n*.db-wal\n*.db-shm\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	for _, d := range []string{"import", filepath.Join("import", "processed")} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if !o.git {
		fmt.Fprintf(out, "Initialized doispes repository at %s\n", dir)
		return nil
	}

	ctx := cmd.Context()
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return err
		}
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, dir, "init: family "+o.familyID, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	slog.Debug("repository initialized", "dir", dir, "commit", hash)

	fmt.Fprintf(out, "Initialized doispes repository at %s (%s)\n", dir, hash)
	return nil
}
