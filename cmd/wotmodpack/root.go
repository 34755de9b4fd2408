// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"wotmodpack/internal/config"
	"wotmodpack/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every command.
type rootFlagValues struct {
	verbose     bool
	configPath  string
	envFile     string
	colorScheme config.ColorScheme
}

// NewRootCommand builds the command tree around app. Running the root
// command without arguments packs the mod in the configured source directory.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd, _ := newRootCommand(app)
	return rootCmd
}

func newRootCommand(app *App) (*cobra.Command, *rootFlagValues) {
	rootFlags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "wotmodpack",
		Short: "Package World of Tanks Python mods into .wotmod archives",
		Long: TitleStyle.Render("wotmodpack") + SubtitleStyle.Render(" - package World of Tanks Python mods") + `

wotmodpack finds your mod's mod_<name>.py entry script, compiles the sources,
lays them out under res/scripts/client/gui/mods and stores them in an
uncompressed <name>.wotmod archive. When the game is installed at the
configured game path the archive goes straight into mods/<game version>.

` + SubtitleStyle.Render("Examples:") + `
  wotmodpack                     Pack using the configured defaults
  wotmodpack pack --watch        Repack whenever a source file changes
  wotmodpack inspect mod_x.wotmod
  wotmodpack game-version        Show where archives will be installed
  wotmodpack config init         Create a default configuration file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd.Context(), app, rootFlags, &packFlagValues{})
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&rootFlags.configPath, "config", "", "config file (default is <user config dir>/wotmodpack/config.cue)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.envFile, "env-file", "", "dotenv file with WOTMODPACK_* variables (default ./.env)")

	rootCmd.AddCommand(
		newPackCommand(app, rootFlags),
		newInspectCommand(app),
		newCleanCommand(app, rootFlags),
		newGameVersionCommand(app, rootFlags),
		newConfigCommand(app, rootFlags),
	)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	return rootCmd, rootFlags
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd, rootFlags := newRootCommand(app)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			reportError(w, err, rootFlags)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// reportError prints err for the user. Actionable errors include their
// suggestions; in verbose mode the error chain and the matching issue guide
// are printed as well.
func reportError(w io.Writer, err error, flags *rootFlagValues) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))

	if !flags.verbose {
		return
	}
	id := issue.IssueOf(err)
	if id == 0 {
		return
	}
	if rendered, renderErr := issue.Get(id).Render(glamourStyle(flags.colorScheme)); renderErr == nil {
		fmt.Fprint(w, rendered)
	}
}

// formatErrorForDisplay formats an error for user display.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark, config.ColorSchemeLight:
		return string(scheme)
	default:
		return "auto"
	}
}
