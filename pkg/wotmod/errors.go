// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"errors"
	"fmt"
)

var (
	// ErrModNotFound is returned when no entry-point file matches EntryPointPattern.
	ErrModNotFound = errors.New("mod entry point not found")
	// ErrVersionElementMissing is returned when version.xml has no <version> element
	// directly under its root.
	ErrVersionElementMissing = errors.New("version element missing")
	// ErrVersionNotFound is returned when the <version> text has no v.<digits>(.<digits>)+ part.
	ErrVersionNotFound = errors.New("game version not found")
	// ErrGameVersion wraps any failure to read the version of a detected game installation.
	ErrGameVersion = errors.New("game version unreadable")
	// ErrCompilerNotFound is returned when the configured Python interpreter cannot be found.
	ErrCompilerNotFound = errors.New("python interpreter not found")
	// ErrCompileFailed is returned when the interpreter reports errors in the sources.
	ErrCompileFailed = errors.New("compilation failed")
	// ErrArchiveReplace is returned when a previous archive cannot be replaced.
	ErrArchiveReplace = errors.New("cannot replace archive")
)

// ModNotFoundError reports the directory that was searched for an entry point.
// It wraps ErrModNotFound for errors.Is() compatibility.
type ModNotFoundError struct {
	Root string
}

// Error implements the error interface.
func (e *ModNotFoundError) Error() string {
	return fmt.Sprintf("no file matching %q under %s", EntryPointPattern, e.Root)
}

// Unwrap returns ErrModNotFound.
func (e *ModNotFoundError) Unwrap() error { return ErrModNotFound }
