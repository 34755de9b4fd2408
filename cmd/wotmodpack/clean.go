// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"wotmodpack/pkg/wotmod"

	"github.com/spf13/cobra"
)

func newCleanCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var tempRoot string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove scratch directories left behind by interrupted builds",
		Long: `Remove scratch directories (mod_build_<uuid>) left behind by interrupted builds.

Every pack run does this before it starts; clean runs the sweep alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd.Context(), app, rootFlags, tempRoot)
		},
	}

	cmd.Flags().StringVar(&tempRoot, "temp-root", "", "parent directory for scratch builds (config: temp_root)")

	return cmd
}

func runClean(ctx context.Context, app *App, rootFlags *rootFlagValues, tempRoot string) error {
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}
	if tempRoot == "" {
		tempRoot = cfg.TempRoot
	}
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}

	removed, err := wotmod.ReapScratchDirs(tempRoot, app.newLogger(rootFlags.verbose))
	if err != nil {
		return err
	}

	if len(removed) == 0 {
		fmt.Fprintf(app.stdout, "%s No scratch directories in %s\n", SuccessStyle.Render("✓"), tempRoot)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Removed %d scratch director%s from %s\n",
		SuccessStyle.Render("✓"), len(removed), plural(len(removed), "y", "ies"), tempRoot)
	return nil
}
