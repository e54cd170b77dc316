package commands

import (
	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/buildinfo"
	"github.com/doispes-dev/doispes/internal/logging"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel  string
	logFormat string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "doispes",
		Short:   "Import family ledger spreadsheets into debts, bills and expenses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(cmd.ErrOrStderr(), opts.level("info"), opts.format("text"))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (default from config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newSummaryCommand(opts))

	return rootCmd
}

// level returns the --log-level flag, or fallback when unset.
func (o *globalOptions) level(fallback string) string {
	if o.logLevel != "" {
		return o.logLevel
	}
	return fallback
}

// format returns the --log-format flag, or fallback when unset.
func (o *globalOptions) format(fallback string) string {
	if o.logFormat != "" {
		return o.logFormat
	}
	return fallback
}
