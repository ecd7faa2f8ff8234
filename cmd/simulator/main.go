package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "simulator",
		Short:         "Brazilian lottery simulator: generator, budget planner and dream interpreter.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "configs/config.yaml", "Path to config file")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logs")

	root.AddCommand(
		newServeCmd(flags),
		newGenerateCmd(flags),
		newBudgetCmd(flags),
		newHistoryCmd(flags),
		newDreamCmd(flags),
		newAgeGateCmd(flags),
		newEventsCmd(flags),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
