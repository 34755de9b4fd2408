// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeCompiler writes <name>.pyc next to every .py file, holding the source
// prefixed with "compiled:".
var fakeCompiler = CompilerFunc(func(_ context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != SourceExt {
			return err
		}
		src, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		return os.WriteFile(strings.TrimSuffix(path, SourceExt)+".pyc", append([]byte("compiled:"), src...), 0o644)
	})
})

// scratchDirsIn returns the names of scratch directories directly under root.
func scratchDirsIn(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && IsScratchDirName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// runnablePython returns the first candidate that actually starts, skipping
// the test when none does. Being on PATH is not enough: version-manager shims
// resolve but fail when their version is not installed.
func runnablePython(t testing.TB, candidates ...string) string {
	t.Helper()
	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = exec.CommandContext(ctx, path, "-c", "pass").Run()
		cancel()
		if err == nil {
			return name
		}
	}
	t.Skipf("no runnable python interpreter among %v", candidates)
	return ""
}

// pythonCandidates lists interpreters in order of preference, the game's
// Python 2.7 first.
var pythonCandidates = []string{"python2.7", "python2", "python3", "python"}
