// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wotmodpack/internal/config"
	"wotmodpack/pkg/wotmod"
)

// stubConfig serves a fixed configuration and records the load options.
type stubConfig struct {
	cfg  *config.Config
	err  error
	opts config.LoadOptions
}

func (s *stubConfig) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	cfg := *s.cfg
	return &cfg, nil
}

// copyCompiler "compiles" by writing <name>.pyc beside every .py file.
func copyCompiler(*config.Config, io.Writer) wotmod.Compiler {
	return wotmod.CompilerFunc(func(_ context.Context, dir string) error {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(path) != wotmod.SourceExt {
				return err
			}
			src, readErr := os.ReadFile(path)
			if readErr != nil {
				return readErr
			}
			return os.WriteFile(strings.TrimSuffix(path, wotmod.SourceExt)+".pyc", src, 0o644)
		})
	})
}

// testEnv is a configured App plus the directories it points at.
type testEnv struct {
	app      *App
	provider *stubConfig
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	source   string
	game     string
	output   string
	temp     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		source: t.TempDir(),
		game:   filepath.Join(t.TempDir(), "World of Tanks"),
		output: t.TempDir(),
		temp:   t.TempDir(),
	}

	cfg := config.DefaultConfig()
	cfg.SourceDir = env.source
	cfg.GamePath = env.game
	cfg.OutputDir = env.output
	cfg.TempRoot = env.temp
	env.provider = &stubConfig{cfg: cfg}

	env.app = NewApp(Dependencies{
		Config:      env.provider,
		NewCompiler: copyCompiler,
		Stdout:      env.stdout,
		Stderr:      env.stderr,
	})
	return env
}

// run executes the command tree with args.
func (e *testEnv) run(args ...string) error {
	rootCmd := NewRootCommand(e.app)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}
