package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"SiteSim/internal/fund"
	"SiteSim/internal/report"
)

func statementCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statement <file>",
		Short: "Check and print a finance statement written by play --statement",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatement,
	}
}

func runStatement(cmd *cobra.Command, args []string) error {
	st, err := fund.LoadStatement(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Game %s, scenario %s, saved %s\n", st.GameID, st.Scenario, st.UpdatedAt.Format("2006-01-02 15:04"))
	for _, row := range st.Rows {
		fmt.Fprintln(out, report.FormatFinanceStatus(row))
	}
	fmt.Fprint(out, report.FormatOutcome(st))
	return nil
}
