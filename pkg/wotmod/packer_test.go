// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wotmodpack/internal/testutil"
)

func writeModSources(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"mod_damage_log.py":          "import damage_log",
		"damage_log/__init__.py":     "",
		"damage_log/panel.py":        "class Panel(object): pass",
		"damage_log/config.json":     `{"lines": 5}`,
		"damage_log/icons/arrow.png": "png",
	})
	return root
}

func TestPack_LocalOutput(t *testing.T) {
	t.Parallel()

	src := writeModSources(t)
	out := t.TempDir()
	tmp := t.TempDir()

	var logs bytes.Buffer
	result, err := Pack(context.Background(), Options{
		SourceRoot: src,
		GamePath:   filepath.Join(tmp, "no-game"),
		OutputDir:  out,
		TempRoot:   tmp,
		Compiler:   fakeCompiler,
		Logger:     log.New(&logs),
	})
	require.NoError(t, err)

	assert.Equal(t, "mod_damage_log", result.Mod.Name)
	assert.Equal(t, src, result.Mod.SourceDir)
	assert.False(t, result.Destination.InGame())
	assert.Equal(t, filepath.Join(out, "mod_damage_log.wotmod"), result.ArchivePath)
	assert.Contains(t, logs.String(), "wrote archive")

	got := readArchive(t, result.ArchivePath)
	assert.Equal(t, map[string]string{
		"res/scripts/client/gui/mods/mod_damage_log.pyc":         "compiled:import damage_log",
		"res/scripts/client/gui/mods/damage_log/__init__.pyc":    "compiled:",
		"res/scripts/client/gui/mods/damage_log/panel.pyc":       "compiled:class Panel(object): pass",
		"res/scripts/client/gui/mods/damage_log/config.json":     `{"lines": 5}`,
		"res/scripts/client/gui/mods/damage_log/icons/arrow.png": "png",
	}, got)

	left, err := scratchDirsIn(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "scratch directory must be removed after a successful run")
}

func TestPack_GameInstall(t *testing.T) {
	t.Parallel()

	src := writeModSources(t)
	game := t.TempDir()
	testutil.WriteGameInstall(t, game, " v.1.19.1.0 #1234")

	result, err := Pack(context.Background(), Options{
		SourceRoot: src,
		GamePath:   game,
		OutputDir:  t.TempDir(),
		TempRoot:   t.TempDir(),
		Compiler:   fakeCompiler,
	})
	require.NoError(t, err)

	want := filepath.Join(game, "mods", "1.19.1.0", "mod_damage_log.wotmod")
	assert.Equal(t, want, result.ArchivePath)
	assert.Equal(t, "1.19.1.0", result.Destination.GameVersion)
	assert.FileExists(t, want)
}

func TestPack_PythonCompilesInPlace(t *testing.T) {
	t.Parallel()

	python := runnablePython(t, pythonCandidates...)

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"mod_hello.py":    "import pkg\n",
		"pkg/__init__.py": "",
		"pkg/a.py":        "A = 1\n",
	})
	out := t.TempDir()

	result, err := Pack(context.Background(), Options{
		SourceRoot: src,
		OutputDir:  out,
		TempRoot:   t.TempDir(),
		Compiler:   &PythonCompiler{Command: python},
	})
	require.NoError(t, err)

	entries, err := ListArchive(result.ArchivePath)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.NotContains(t, e.Name, "__pycache__")
		assert.NotEqual(t, SourceExt, path.Ext(e.Name), "source left in archive: %s", e.Name)
		names = append(names, e.Name)
	}
	for _, want := range []string{
		"res/scripts/client/gui/mods/mod_hello.pyc",
		"res/scripts/client/gui/mods/pkg/__init__.pyc",
		"res/scripts/client/gui/mods/pkg/a.pyc",
	} {
		assert.Contains(t, names, want)
	}
}

func TestPack_ReplacesPreviousArchive(t *testing.T) {
	t.Parallel()

	src := writeModSources(t)
	out := t.TempDir()
	target := filepath.Join(out, "mod_damage_log.wotmod")
	require.NoError(t, os.WriteFile(target, []byte("stale"), 0o644))

	opts := Options{SourceRoot: src, OutputDir: out, TempRoot: t.TempDir(), Compiler: fakeCompiler}
	_, err := Pack(context.Background(), opts)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mod_damage_log.wotmod", entries[0].Name())

	got := readArchive(t, target)
	assert.Equal(t, "compiled:import damage_log", got["res/scripts/client/gui/mods/mod_damage_log.pyc"])
}

func TestPack_ModNotFound(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"helpers.py": ""})
	tmp := t.TempDir()

	called := false
	compiler := CompilerFunc(func(context.Context, string) error {
		called = true
		return nil
	})

	_, err := Pack(context.Background(), Options{SourceRoot: src, TempRoot: tmp, Compiler: compiler})
	require.ErrorIs(t, err, ErrModNotFound)
	assert.False(t, called, "no pipeline step may run without a mod")

	left, err := scratchDirsIn(tmp)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestPack_FailureCleansScratch(t *testing.T) {
	t.Parallel()

	src := writeModSources(t)
	out := t.TempDir()
	tmp := t.TempDir()
	orphan := filepath.Join(tmp, ScratchPrefix+uuid.NewString())
	require.NoError(t, os.Mkdir(orphan, 0o755))

	boom := errors.New("compiler crashed")
	var seen string
	compiler := CompilerFunc(func(_ context.Context, dir string) error {
		seen = dir
		return boom
	})

	_, err := Pack(context.Background(), Options{SourceRoot: src, OutputDir: out, TempRoot: tmp, Compiler: compiler})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, filepath.FromSlash(ModsSubpath), relToScratch(t, tmp, seen))
	assert.NoDirExists(t, orphan)

	left, err := scratchDirsIn(tmp)
	require.NoError(t, err)
	assert.Empty(t, left, "scratch directory must be removed after a failed run")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "no archive may appear after a failed run")
}

func TestPack_GameVersionUnreadable(t *testing.T) {
	t.Parallel()

	src := writeModSources(t)
	game := t.TempDir()
	testutil.WriteTree(t, game, map[string]string{GameExecutable: "MZ", VersionManifest: "<root/>"})
	out := t.TempDir()

	_, err := Pack(context.Background(), Options{SourceRoot: src, GamePath: game, OutputDir: out, TempRoot: t.TempDir(), Compiler: fakeCompiler})
	require.ErrorIs(t, err, ErrVersionElementMissing)
	assert.ErrorIs(t, err, ErrGameVersion)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "no fallback to the output directory once the game is detected")
}

// relToScratch returns dir relative to the scratch directory it lives in under tmp.
func relToScratch(t *testing.T, tmp, dir string) string {
	t.Helper()
	rel, err := filepath.Rel(tmp, dir)
	require.NoError(t, err)
	first, rest, found := cutPath(rel)
	require.True(t, found, "dir %s not inside a scratch directory", dir)
	require.True(t, IsScratchDirName(first), "unexpected scratch name %s", first)
	return rest
}

func cutPath(p string) (first, rest string, found bool) {
	for i := 0; i < len(p); i++ {
		if os.IsPathSeparator(p[i]) {
			return p[:i], p[i+1:], true
		}
	}
	return p, "", false
}
