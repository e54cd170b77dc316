package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/config"
	"github.com/doispes-dev/doispes/internal/ledger"
	"github.com/doispes-dev/doispes/internal/logging"
)

// loadRepo resolves repoDir, loads and validates its doispes.yaml, and
// reconfigures logging from it unless the log flags override it.
func loadRepo(cmd *cobra.Command, opts *globalOptions, repoDir string) (string, *config.Config, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("%s is not a doispes repository (no %s); run doispes init first", root, config.FileName)
	}
	if err != nil {
		return "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid %s: %w", config.FileName, err)
	}

	logging.Setup(cmd.ErrOrStderr(), opts.level(cfg.Log.Level), opts.format(cfg.Log.Format))
	return root, cfg, nil
}

func storageOptions(cfg *config.Config) ledger.Options {
	return ledger.Options{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		URL:    cfg.Storage.DatabaseURL(),
	}
}
