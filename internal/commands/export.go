package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/export"
	"github.com/doispes-dev/doispes/internal/importer"
)

func newExportCommand() *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a review workbook of how a spreadsheet would be classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], format, outPath)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "parser to use instead of detecting by extension")
	cmd.Flags().StringVar(&outPath, "out", "", "output workbook (default: <file>-review.xlsx)")

	return cmd
}

func runExport(cmd *cobra.Command, src, format, outPath string) error {
	reg := importer.DefaultRegistry()
	targets, err := importTargets(reg, "", []string{src}, format)
	if err != nil {
		return err
	}
	t := targets[0]

	res, err := parseFile(t)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(src, filepath.Ext(src)) + "-review.xlsx"
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	if err := export.WriteXLSX(f, res.Items); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", outPath, err)
	}

	slog.Info("export written", "file", t.name, "out", outPath, "items", len(res.Items))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d items to %s\n", len(res.Items), outPath)
	return nil
}
