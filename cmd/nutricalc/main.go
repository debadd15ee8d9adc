package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nutricalc",
		Short:         "Calcula IMC, TMB, GET y macros diarios",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCalculateCmd())
	return root
}
