// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"wotmodpack/pkg/wotmod"

	"github.com/spf13/cobra"
)

func newGameVersionCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var gamePath string

	cmd := &cobra.Command{
		Use:   "game-version",
		Short: "Show the detected game version and where archives will go",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGameVersion(cmd.Context(), app, rootFlags, gamePath)
		},
	}

	cmd.Flags().StringVar(&gamePath, "game-path", "", "game installation directory (config: game_path)")

	return cmd
}

func runGameVersion(ctx context.Context, app *App, rootFlags *rootFlagValues, gamePath string) error {
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}
	if gamePath != "" {
		cfg.GamePath = gamePath
	}

	opts := wotmod.Options{GamePath: cfg.GamePath, OutputDir: cfg.OutputDir}
	dest, err := wotmod.ResolveDestination(wotmod.DestinationOptions{GamePath: opts.GamePath, OutputDir: opts.OutputDir})
	if err != nil {
		return describePackError(err, opts)
	}

	if !dest.InGame() {
		fmt.Fprintf(app.stdout, "%s No game installation at %s %s\n",
			WarningStyle.Render("!"), cfg.GamePath, SubtitleStyle.Render("("+wotmod.GameExecutable+" not found)"))
		fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Archives go to"), dest.Dir)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Game version"), SuccessStyle.Render(dest.GameVersion))
	fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render("Mods directory"), dest.Dir)
	return nil
}
