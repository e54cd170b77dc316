package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doispes-dev/doispes/internal/importlog"
	"github.com/doispes-dev/doispes/internal/ledger"
)

func newSummaryCommand(g *globalOptions) *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show totals for the configured family's ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, cfg, err := loadRepo(cmd, g, repoDir)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := ledger.Open(ctx, storageOptions(cfg), root)
			if err != nil {
				return fmt.Errorf("opening ledger: %w", err)
			}
			defer store.Close()

			s, err := ledger.LoadSummary(ctx, store, cfg.Owner.FamilyID)
			if err != nil {
				return err
			}
			runs, err := importlog.Read(root)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Family\t%s\n", cfg.Owner.FamilyID)
			fmt.Fprintf(w, "Imports\t%d\n", len(runs))
			fmt.Fprintf(w, "Debts\t%d\n", s.Debts)
			fmt.Fprintf(w, "Recurring expenses\t%d\n", s.Recurring)
			fmt.Fprintf(w, "Transactions\t%d\n", s.Transactions)
			fmt.Fprintf(w, "Monthly recurring\t%s\n", s.MonthlyRecurring.StringFixed(2))
			fmt.Fprintf(w, "Monthly installments\t%s\n", s.MonthlyInstallments.StringFixed(2))
			fmt.Fprintf(w, "Outstanding debt\t%s\n", s.OutstandingDebt.StringFixed(2))
			fmt.Fprintf(w, "Income\t%s\n", s.Income.StringFixed(2))
			fmt.Fprintf(w, "Expenses\t%s\n", s.Expenses.StringFixed(2))
			fmt.Fprintf(w, "Investments\t%s\n", s.Investments.StringFixed(2))
			fmt.Fprintf(w, "Balance\t%s\n", s.Balance.StringFixed(2))
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	return cmd
}
