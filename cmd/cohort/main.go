// Package main provides the entry point for the cohort CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amedeedaboville/gix-of-theseus/cmd/cohort/commands"
)

func main() {
	rootCmd := &cobra.Command{ //nolint:exhaustruct // cobra.Command fields default to zero.
		Use:   "cohort",
		Short: "Ship-of-Theseus cohort analysis for a git repository's source code",
		Long: `cohort walks a git repository's commit history and reports, for each
sampled point in time, how many lines of code survive from each
calendar-year cohort that introduced them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
