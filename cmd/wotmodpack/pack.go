// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"wotmodpack/internal/config"
	"wotmodpack/internal/watch"
	"wotmodpack/pkg/wotmod"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// packFlagValues holds the pack command's flags. Non-empty values override
// the loaded configuration.
type packFlagValues struct {
	source    string
	gamePath  string
	outputDir string
	python    string
	tempRoot  string
	watch     bool
}

func newPackCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &packFlagValues{}

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Build the .wotmod archive for the mod in the source directory",
		Long: `Build the .wotmod archive for the mod in the source directory.

The first mod_<name>.py found under the source directory names the mod. Its
directory is copied, compiled and stripped of .py sources, then archived as
<name>.wotmod into <game path>/mods/<game version> when the game is installed
there, otherwise into the output directory.`,
		Example: `  # Pack the mod in ./src into ./dist when no game is installed
  wotmodpack pack --source ./src --output-dir ./dist

  # Use a specific interpreter
  wotmodpack pack --python "py -2.7"

  # Rebuild on every change
  wotmodpack pack --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd.Context(), app, rootFlags, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "directory searched for mod_*.py (config: source_dir)")
	cmd.Flags().StringVar(&flags.gamePath, "game-path", "", "game installation directory (config: game_path)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "destination when no game is installed (config: output_dir)")
	cmd.Flags().StringVar(&flags.python, "python", "", "python interpreter command (config: compiler.python)")
	cmd.Flags().StringVar(&flags.tempRoot, "temp-root", "", "parent directory for scratch builds (config: temp_root)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "repack whenever a source file changes")

	return cmd
}

// apply overrides cfg with the flags that were set.
func (f *packFlagValues) apply(cfg *config.Config) {
	for _, o := range []struct {
		value string
		dst   *string
	}{
		{f.source, &cfg.SourceDir},
		{f.gamePath, &cfg.GamePath},
		{f.outputDir, &cfg.OutputDir},
		{f.python, &cfg.Compiler.Python},
		{f.tempRoot, &cfg.TempRoot},
	} {
		if o.value != "" {
			*o.dst = o.value
		}
	}
}

func runPack(ctx context.Context, app *App, rootFlags *rootFlagValues, flags *packFlagValues) error {
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err != nil {
		return err
	}
	flags.apply(cfg)

	logger := app.newLogger(rootFlags.verbose)
	opts := wotmod.Options{
		SourceRoot: cfg.SourceDir,
		GamePath:   cfg.GamePath,
		OutputDir:  cfg.OutputDir,
		TempRoot:   cfg.TempRoot,
		Compiler:   app.NewCompiler(cfg, app.stderr),
		Logger:     logger,
	}

	if flags.watch {
		return runWatchMode(ctx, app, rootFlags, opts, logger)
	}

	result, err := wotmod.Pack(ctx, opts)
	if err != nil {
		return describePackError(err, opts)
	}
	printPackResult(app, result)
	return nil
}

func printPackResult(app *App, result *wotmod.Result) {
	where := SubtitleStyle.Render("(local output)")
	if result.Destination.InGame() {
		where = SubtitleStyle.Render("(game " + result.Destination.GameVersion + ")")
	}
	fmt.Fprintf(app.stdout, "%s Packed %s into %s %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(result.Mod.Name), result.ArchivePath, where)
}

// runWatchMode packs once, then repacks after every change under the source
// directory until ctx is cancelled (Ctrl+C). Build failures are reported and
// watching continues.
func runWatchMode(ctx context.Context, app *App, rootFlags *rootFlagValues, opts wotmod.Options, logger *log.Logger) error {
	rebuild := func(ctx context.Context) {
		result, err := wotmod.Pack(ctx, opts)
		if err != nil {
			if ctx.Err() == nil {
				reportError(app.stderr, describePackError(err, opts), rootFlags)
			}
			return
		}
		printPackResult(app, result)
	}

	rebuild(ctx)

	baseDir := opts.SourceRoot
	if baseDir == "" {
		baseDir = wotmod.CurrentDir
	}
	w, err := watch.New(watch.Config{
		BaseDir: baseDir,
		Logger:  logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s %d change(s), repacking...\n", CmdStyle.Render("→"), len(changed))
			rebuild(ctx)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Watching %s for changes (Ctrl+C to stop)...\n",
		CmdStyle.Render("→"), filepath.Clean(w.BaseDir()))
	return w.Run(ctx)
}
