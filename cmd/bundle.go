package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vividtools/vivid-ide/cli"
	"github.com/vividtools/vivid-ide/config"
	"github.com/vividtools/vivid-ide/errors"
	"github.com/vividtools/vivid-ide/pkg/paths"
	"github.com/vividtools/vivid-ide/pkg/runtime"
	"github.com/vividtools/vivid-ide/util/pathutil"
)

// NewBundleCmd creates the 'bundle' command: export the current project as
// a standalone application through the runtime.
func NewBundleCmd() *cobra.Command {
	var outputDir string
	var appName string
	var platform string

	cmd := &cobra.Command{
		Use:   "bundle [project-dir]",
		Short: "Export a project as a standalone app",
		Long: `Asks the running vivid runtime to compile the project and package it with
the player binary into a standalone application.

Examples:
  # Bundle the project in the current directory
  vivid bundle

  # Bundle another project for a specific platform
  vivid bundle ~/sketches/plasma --platform macos --output ./dist`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) > 0 {
				projectDir = args[0]
			}
			projectDir, err := pathutil.Expand(projectDir)
			if err != nil {
				return err
			}
			if outputDir != "" {
				if outputDir, err = pathutil.Expand(outputDir); err != nil {
					return err
				}
			}

			cfg, err := loadConfig("")
			if err != nil {
				cfg = &config.Config{}
				cfg.ApplyDefaults()
			}
			socket := cfg.Runtime.Socket
			if socket == "" {
				socket = paths.RuntimeSocket()
			}

			bridge := runtime.NewBridge(socket,
				runtime.WithCommandTimeout(5*time.Minute))
			defer bridge.Close()
			client := runtime.NewClient(bridge)

			if !bridge.IsRunning() {
				return errors.RuntimeUnreachable(socket, fmt.Errorf("no runtime listening"))
			}

			progress := cli.NewProgressReporter()
			progress.Update("compile", "running")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			result, err := client.BundleProject(ctx, runtime.BundleOptions{
				ProjectPath: projectDir,
				OutputDir:   outputDir,
				AppName:     appName,
				Platform:    platform,
			})
			if err != nil {
				progress.Update("compile", "failed")
				progress.Done()
				return err
			}
			progress.Update("compile", "done")

			if !result.Success {
				progress.Update("package", "failed")
				progress.Done()
				fmt.Fprintln(os.Stderr, result.Output)
				return errors.BundleFailed(projectDir, result.Output)
			}
			progress.Update("package", "done")
			progress.Done()

			fmt.Printf("Bundle written to %s\n", result.BundlePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for the bundle")
	cmd.Flags().StringVar(&appName, "name", "", "Application name (defaults to the project name)")
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform: macos, linux, windows")
	return cmd
}
