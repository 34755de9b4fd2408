// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// EntryPointPattern is the file name pattern of a mod entry point. Matching is
// case-insensitive.
const EntryPointPattern = "mod_*.py"

// Descriptor identifies the mod being packaged.
type Descriptor struct {
	// SourceDir is the directory containing the entry point. Its whole
	// content is packaged.
	SourceDir string
	// Name is the entry point's file name without extension. It names the archive.
	Name string
}

// IsEntryPoint reports whether name matches EntryPointPattern, ignoring case.
func IsEntryPoint(name string) bool {
	matched, err := doublestar.Match(EntryPointPattern, strings.ToLower(name))
	return err == nil && matched
}

// Locate walks root in lexical order and returns the descriptor of the first
// entry point found. A *ModNotFoundError is returned when there is none.
func Locate(root string) (Descriptor, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve source root: %w", err)
	}

	var found *Descriptor
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absRoot || !IsEntryPoint(d.Name()) {
			return nil
		}
		found = &Descriptor{
			SourceDir: filepath.Dir(path),
			Name:      strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
		}
		return fs.SkipAll
	})
	if walkErr != nil {
		if errors.Is(walkErr, fs.ErrNotExist) {
			return Descriptor{}, &ModNotFoundError{Root: absRoot}
		}
		return Descriptor{}, fmt.Errorf("search %s for entry point: %w", absRoot, walkErr)
	}
	if found == nil {
		return Descriptor{}, &ModNotFoundError{Root: absRoot}
	}
	return *found, nil
}
