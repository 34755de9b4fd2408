// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"wotmodpack/internal/config"
	"wotmodpack/internal/issue"
	"wotmodpack/pkg/wotmod"

	"github.com/charmbracelet/log"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// CompilerFactory builds the compiler for a run. stderr receives the
	// compiler's own diagnostics.
	CompilerFactory func(cfg *config.Config, stderr io.Writer) wotmod.Compiler

	// App wires CLI services and shared dependencies. All command handlers
	// receive an App and write only to its stdout and stderr.
	App struct {
		Config      ConfigProvider
		NewCompiler CompilerFactory
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		NewCompiler CompilerFactory
		Stdout      io.Writer
		Stderr      io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		NewCompiler: deps.NewCompiler,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewCompiler == nil {
		app.NewCompiler = pythonCompiler
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func pythonCompiler(cfg *config.Config, stderr io.Writer) wotmod.Compiler {
	return &wotmod.PythonCompiler{
		Command:   cfg.Compiler.Python,
		MaxLevels: cfg.Compiler.MaxLevels,
		Stderr:    stderr,
	}
}

// loadConfig loads configuration for the invocation and folds ui.verbose
// into the --verbose flag.
func (a *App) loadConfig(ctx context.Context, rootFlags *rootFlagValues) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: rootFlags.configPath,
		EnvFile:        rootFlags.envFile,
	})
	if err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && ae.Issue == 0 {
			ae.Issue = issue.ConfigLoadFailedId
		}
		return nil, err
	}
	if !rootFlags.verbose {
		rootFlags.verbose = cfg.UI.Verbose
	}
	rootFlags.colorScheme = cfg.UI.ColorScheme
	return cfg, nil
}

// newLogger returns the structured logger for pipeline progress. It logs to
// stderr at Info level, or Debug when verbose.
func (a *App) newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}
