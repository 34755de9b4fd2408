// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"wotmodpack/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `wotmodpack config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wotmodpack configuration",
		Long: `Manage wotmodpack configuration.

Configuration is read from --config, else from:
  - Linux: ~/.config/wotmodpack/config.cue
  - macOS: ~/Library/Application Support/wotmodpack/config.cue
  - Windows: %APPDATA%\wotmodpack\config.cue
and finally ./config.cue. WOTMODPACK_* environment variables (and ./.env)
override file values, e.g. WOTMODPACK_GAME_PATH or WOTMODPACK_COMPILER_PYTHON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, rootFlags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) error {
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Source != "" {
		source = cfg.Source
	}
	fmt.Fprintf(app.stdout, "%s: %s\n\n", keyStyle.Render("Config file"), source)

	tempRoot := valueStyle.Render(cfg.TempRoot)
	if cfg.TempRoot == "" {
		tempRoot = SubtitleStyle.Render("(system temp directory)")
	}

	rows := []struct{ key, value string }{
		{"game_path", valueStyle.Render(cfg.GamePath)},
		{"output_dir", valueStyle.Render(cfg.OutputDir)},
		{"source_dir", valueStyle.Render(cfg.SourceDir)},
		{"temp_root", tempRoot},
		{"compiler.python", valueStyle.Render(cfg.Compiler.Python)},
		{"compiler.max_levels", valueStyle.Render(strconv.Itoa(cfg.Compiler.MaxLevels))},
		{"ui.verbose", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose))},
		{"ui.color_scheme", valueStyle.Render(string(cfg.UI.ColorScheme))},
	}
	for _, r := range rows {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render(r.key), r.value)
	}

	return nil
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
