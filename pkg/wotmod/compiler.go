// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

const (
	// DefaultPython is the interpreter command used when none is configured.
	DefaultPython = "python"
	// DefaultMaxLevels bounds how deep the compiler descends into the tree.
	DefaultMaxLevels = 128
)

// compileScript compiles a directory tree quietly and exits non-zero if any
// file failed. Every <name>.pyc is written next to its <name>.py: Python 3
// needs legacy=True for that, or it writes into __pycache__ instead.
const compileScript = "import compileall, sys; " +
	"kw = {'legacy': True} if sys.version_info[0] >= 3 else {}; " +
	"sys.exit(0 if compileall.compile_dir(sys.argv[1], maxlevels=int(sys.argv[2]), quiet=True, **kw) else 1)"

type (
	// Compiler turns the sources under a directory into compiled artifacts in place.
	Compiler interface {
		Compile(ctx context.Context, dir string) error
	}

	// CompilerFunc adapts a function to the Compiler interface.
	CompilerFunc func(ctx context.Context, dir string) error

	// PythonCompiler compiles with an external Python interpreter's compileall module.
	PythonCompiler struct {
		// Command is the interpreter command line, e.g. "python" or "py -2.7".
		// It is split with shell rules and may reference environment variables.
		Command string
		// MaxLevels bounds recursion depth. Zero means DefaultMaxLevels.
		MaxLevels int
		// Stderr receives the interpreter's error output in addition to the
		// returned error. Nil discards it.
		Stderr io.Writer
	}
)

// Compile calls f(ctx, dir).
func (f CompilerFunc) Compile(ctx context.Context, dir string) error { return f(ctx, dir) }

// Argv returns the full command line used to compile dir.
func (c *PythonCompiler) Argv(dir string) ([]string, error) {
	command := c.Command
	if strings.TrimSpace(command) == "" {
		command = DefaultPython
	}
	fields, err := shell.Fields(command, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse python command %q: %w", command, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("parse python command %q: empty command", command)
	}

	maxLevels := c.MaxLevels
	if maxLevels <= 0 {
		maxLevels = DefaultMaxLevels
	}
	return append(fields, "-c", compileScript, dir, strconv.Itoa(maxLevels)), nil
}

// Compile runs the interpreter on dir. Per-file progress output is suppressed.
func (c *PythonCompiler) Compile(ctx context.Context, dir string) error {
	argv, err := c.Argv(dir)
	if err != nil {
		return err
	}

	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCompilerNotFound, argv[0], err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Stdout = &out
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&out, c.Stderr)
	} else {
		cmd.Stderr = &out
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with status %d: %s", ErrCompileFailed, argv[0], exitErr.ExitCode(), strings.TrimSpace(out.String()))
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
