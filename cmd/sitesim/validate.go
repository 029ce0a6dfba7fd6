package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and the scenario graph",
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, sc := loadScenario(cmd)
	fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", describe(sc))
	return nil
}
