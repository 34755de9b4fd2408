// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"wotmodpack/internal/testutil"
)

// readArchive returns the content of every file entry keyed by entry name.
func readArchive(t testing.TB, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = r.Close() }()

	files := make(map[string]string)
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func TestArchive(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"res/scripts/client/gui/mods/mod_x.pyc":    "bytecode",
		"res/scripts/client/gui/mods/x/cfg.json":   "{}",
		"res/scripts/client/gui/mods/x/empty_dir/": "",
	})

	target := filepath.Join(t.TempDir(), "out", ArchiveName("mod_x"))
	if err := Archive(src, target); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	entries, err := ListArchive(target)
	if err != nil {
		t.Fatalf("ListArchive() error: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		if !e.Stored() {
			t.Errorf("entry %s uses method %d, want stored", e.Name, e.Method)
		}
		if e.IsDir != strings.HasSuffix(e.Name, "/") {
			t.Errorf("entry %s: IsDir = %v", e.Name, e.IsDir)
		}
	}

	want := []string{
		"res/",
		"res/scripts/",
		"res/scripts/client/",
		"res/scripts/client/gui/",
		"res/scripts/client/gui/mods/",
		"res/scripts/client/gui/mods/mod_x.pyc",
		"res/scripts/client/gui/mods/x/",
		"res/scripts/client/gui/mods/x/cfg.json",
		"res/scripts/client/gui/mods/x/empty_dir/",
	}
	if !slices.Equal(names, want) {
		t.Errorf("entries = %v\nwant %v", names, want)
	}

	// No temporary files are left next to the archive.
	siblings, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(siblings) != 1 {
		t.Errorf("destination contains %d entries, want only the archive", len(siblings))
	}
}

func TestArchive_ReplacesExisting(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"new.pyc": "new"})

	destDir := t.TempDir()
	target := filepath.Join(destDir, ArchiveName("mod_x"))
	if err := os.WriteFile(target, []byte("old archive, not even a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Archive(src, target); err != nil {
		t.Fatalf("Archive() error: %v", err)
	}

	got := readArchive(t, target)
	if len(got) != 1 || got["new.pyc"] != "new" {
		t.Errorf("archive content = %v, want only new.pyc", got)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "*"+ArchiveExt))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("found %d archives, want 1: %v", len(matches), matches)
	}
}

func TestArchive_TargetNotReplaceable(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.pyc": "a"})

	destDir := t.TempDir()
	target := filepath.Join(destDir, ArchiveName("mod_x"))
	testutil.WriteTree(t, target, map[string]string{"keep.txt": "occupied"})

	err := Archive(src, target)
	if !errors.Is(err, ErrArchiveReplace) {
		t.Fatalf("Archive() error = %v, want ErrArchiveReplace", err)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary archive left behind: %v", entries)
	}
}

func TestArchive_TargetEmptyDirectoryKept(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"a.pyc": "a"})

	destDir := t.TempDir()
	target := filepath.Join(destDir, ArchiveName("mod_x"))
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}

	err := Archive(src, target)
	if !errors.Is(err, ErrArchiveReplace) {
		t.Fatalf("Archive() error = %v, want ErrArchiveReplace", err)
	}
	if !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("error should name the directory, got %q", err)
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		t.Errorf("empty directory at target was removed: %v", err)
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary archive left behind: %v", entries)
	}
}

func TestArchive_MissingSourceKeepsPrevious(t *testing.T) {
	t.Parallel()

	destDir := t.TempDir()
	target := filepath.Join(destDir, ArchiveName("mod_x"))
	if err := os.WriteFile(target, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Archive(filepath.Join(t.TempDir(), "missing"), target); err == nil {
		t.Fatal("Archive() expected error for missing source")
	}

	data, err := os.ReadFile(target)
	if err != nil || string(data) != "previous" {
		t.Errorf("previous archive changed: %q, %v", data, err)
	}
	entries, _ := os.ReadDir(destDir)
	if len(entries) != 1 {
		t.Errorf("partial archive left behind: %d entries", len(entries))
	}
}

// Directory names never contain a dot, so generated paths cannot collide
// with generated file names.
func TestArchive_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		files := rapid.MapOfN(
			rapid.StringMatching(`[a-z]{1,6}(/[a-z]{1,6}){0,3}\.(pyc|json|txt)`),
			rapid.SliceOfN(rapid.Byte(), 0, 512),
			1, 12,
		).Draw(rt, "files")

		src, err := os.MkdirTemp(t.TempDir(), "src")
		if err != nil {
			rt.Fatal(err)
		}
		want := make(map[string]string, len(files))
		for name, content := range files {
			path := filepath.Join(src, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				rt.Fatal(err)
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				rt.Fatal(err)
			}
			want[name] = string(content)
		}

		target := filepath.Join(src+".out", ArchiveName("mod_rt"))
		if err := Archive(src, target); err != nil {
			rt.Fatalf("Archive() error: %v", err)
		}

		got := readArchive(t, target)
		if len(got) != len(want) {
			rt.Fatalf("archive has %d files, want %d", len(got), len(want))
		}
		for name, content := range want {
			if got[name] != content {
				rt.Fatalf("entry %s differs after round trip", name)
			}
		}
	})
}
