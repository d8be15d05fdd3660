// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for dockstate.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"dockstate-cli/internal/config"
	"dockstate-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "dockstate",
		Short: "Declarative single-container reconciliation",
		Long: TitleStyle.Render("dockstate") + SubtitleStyle.Render(" - Declarative single-container reconciliation") + `

dockstate reads a statefile declaring one container and the image it runs
from, observes what actually exists on the engine, and performs the minimal
set of actions to converge reality to the declaration. Running it twice in
a row changes nothing the second time.

Statefiles are written in CUE (or TOML) and drive either Docker or Podman
through their CLIs.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'dockstate init' to create a statefile
  2. Declare the container name, image, and desired state
  3. Apply it with: dockstate apply

` + SubtitleStyle.Render("Examples:") + `
  dockstate apply                  Converge using ./statefile.cue
  dockstate apply -f web.cue       Converge using a specific statefile
  dockstate apply --dry-run        Show what would change without doing it
  dockstate apply --json           Machine-readable result on stdout
  dockstate init                   Create a starter statefile`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dockstate/config.cue)")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig loads the tool configuration, honoring the --config flag.
// Verbose from the config file applies only when the flag was not given.
func loadConfig(ctx context.Context) *config.Config {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return config.DefaultConfig()
	}
	if !verbose {
		verbose = cfg.UI.Verbose
	}
	return cfg
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
