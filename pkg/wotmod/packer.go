// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

type (
	// Options configures a packaging run.
	Options struct {
		// SourceRoot is searched for the mod entry point. Empty means the working directory.
		SourceRoot string
		// GamePath is the game installation probed for GameExecutable.
		GamePath string
		// OutputDir receives the archive when no game installation is detected.
		OutputDir string
		// TempRoot holds the scratch directory. Empty means os.TempDir().
		TempRoot string
		// Compiler compiles the copied sources. Nil means a PythonCompiler
		// running DefaultPython.
		Compiler Compiler
		// Logger receives progress. Nil discards it.
		Logger *log.Logger
	}

	// Result describes a finished packaging run.
	Result struct {
		Mod         Descriptor
		Destination Destination
		// ArchivePath is the path of the written .wotmod file.
		ArchivePath string
	}
)

// Pack runs the full pipeline: locate the mod, resolve the destination, build
// the compiled tree in a scratch directory and archive it into place.
// The scratch directory is removed before Pack returns, whatever the outcome.
func Pack(ctx context.Context, opts Options) (result *Result, err error) {
	logger := orDiscard(opts.Logger)

	root := opts.SourceRoot
	if root == "" {
		root = CurrentDir
	}
	mod, err := Locate(root)
	if err != nil {
		return nil, err
	}
	logger.Info("found mod", "name", mod.Name, "source", mod.SourceDir)

	dest, err := ResolveDestination(DestinationOptions{GamePath: opts.GamePath, OutputDir: opts.OutputDir})
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	if dest.InGame() {
		logger.Info("game installation detected", "version", dest.GameVersion, "mods", dest.Dir)
	} else {
		logger.Debug("no game installation detected", "game_path", opts.GamePath, "output", dest.Dir)
	}

	scratch, err := AcquireScratchDir(opts.TempRoot, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := scratch.Release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	compiler := opts.Compiler
	if compiler == nil {
		compiler = &PythonCompiler{}
	}

	modsDir := filepath.Join(scratch.Path(), filepath.FromSlash(ModsSubpath))
	logger.Debug("building tree", "dir", modsDir)
	if err = BuildTree(ctx, mod.SourceDir, modsDir, compiler); err != nil {
		return nil, err
	}

	target := filepath.Join(dest.Dir, ArchiveName(mod.Name))
	if err = Archive(scratch.Path(), target); err != nil {
		return nil, err
	}
	logger.Info("wrote archive", "path", target)

	return &Result{Mod: mod, Destination: dest, ArchivePath: target}, nil
}
