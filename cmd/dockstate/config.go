// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"dockstate-cli/internal/config"
	"dockstate-cli/internal/issue"
)

// configCmd is the `dockstate config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dockstate configuration",
	Long: `Manage dockstate configuration.

Configuration is stored in:
  - Linux: ~/.config/dockstate/config.cue
  - macOS: ~/Library/Application Support/dockstate/config.cue
  - Windows: %APPDATA%\dockstate\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile(cmd)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd, args[0], args[1])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig(ctx context.Context) error {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	// The provider does not cache resolved paths; derive from the standard
	// config directory each time.
	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil && configFileExists(cfgDir) {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), configFilePath(cfgDir))
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("engine"), SuccessStyle.Render(string(cfg.Engine)))
	if cfg.BinaryPath != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("binary_path"), SuccessStyle.Render(cfg.BinaryPath))
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("binary_path"), SubtitleStyle.Render("(PATH lookup)"))
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("stop_timeout_seconds"), SuccessStyle.Render(strconv.Itoa(cfg.StopTimeoutSeconds)))

	fmt.Println()
	fmt.Printf("%s:\n", CmdStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", SuccessStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	return nil
}

func initConfigFile(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n",
		SuccessStyle.Render("✓"), configFilePath(cfgDir))
	return nil
}

func showConfigPath(cmd *cobra.Command) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config directory: %s\n", cfgDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configFilePath(cfgDir))
	return nil
}

func setConfigValue(cmd *cobra.Command, key, value string) error {
	cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return err
	}

	switch key {
	case "engine":
		engine := config.Engine(value)
		if valid, errs := engine.IsValid(); !valid {
			return errs[0]
		}
		cfg.Engine = engine

	case "binary_path":
		cfg.BinaryPath = value

	case "stop_timeout_seconds":
		seconds, convErr := strconv.Atoi(value)
		if convErr != nil || seconds < 0 {
			return fmt.Errorf("invalid stop_timeout_seconds: must be a non-negative integer")
		}
		cfg.StopTimeoutSeconds = seconds

	case "ui.color_scheme":
		scheme := config.ColorScheme(value)
		if valid, errs := scheme.IsValid(); !valid {
			return errs[0]
		}
		cfg.UI.ColorScheme = scheme

	case "ui.verbose":
		cfg.UI.Verbose = value == "true" || value == "1"

	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: engine, binary_path, stop_timeout_seconds, ui.color_scheme, ui.verbose", key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func configFilePath(cfgDir string) string {
	return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
}

// configFileExists checks whether a config file exists in cfgDir.
func configFileExists(cfgDir string) bool {
	info, err := os.Stat(configFilePath(cfgDir))
	return err == nil && !info.IsDir()
}
