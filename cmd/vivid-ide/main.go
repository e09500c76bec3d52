package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vividtools/vivid-ide/cli"
	"github.com/vividtools/vivid-ide/cmd"
	"github.com/vividtools/vivid-ide/pkg/profiling"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"vivid",
		"Terminal IDE for vivid creative-coding projects",
	)
	rootCmd.Long = `Connects to a running vivid runtime and opens the IDE: code editor,
operator parameters, preview status, console and an embedded terminal.

Examples:
  # Open the IDE for the project in the current directory
  vivid

  # Open a specific project
  vivid ~/sketches/plasma`
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = cmd.RunIDE
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(cmd.NewNewCmd())
	rootCmd.AddCommand(cmd.NewBundleCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("vivid"))
	rootCmd.AddCommand(cli.NewDocsCommand(rootCmd))

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRun = profiler.PostRun

	cli.SetVersionTemplate(rootCmd)
	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.Flags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
