// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// GameExecutable marks a directory as a World of Tanks installation.
	GameExecutable = "WorldOfTanks.exe"
	// ModsDirName is the directory under the game root holding per-version mod folders.
	ModsDirName = "mods"
	// CurrentDir is the last-resort destination.
	CurrentDir = "."
)

type (
	// DestinationOptions are the inputs of ResolveDestination.
	DestinationOptions struct {
		// GamePath is the game installation root to probe.
		GamePath string
		// OutputDir is the local fallback destination.
		OutputDir string
	}

	// Destination is where the archive of a run is written.
	Destination struct {
		// Dir is the directory that receives <mod>.wotmod.
		Dir string
		// GameVersion is the client version when Dir is inside a game install.
		GameVersion string
	}
)

// InGame reports whether the destination is a game installation's mods folder.
func (d Destination) InGame() bool { return d.GameVersion != "" }

// ResolveDestination returns <GamePath>/mods/<version> when GamePath holds
// GameExecutable. Otherwise it returns OutputDir if it is an existing
// directory, else CurrentDir.
//
// Once the game is detected, a missing or unparsable version.xml is an error;
// there is no fallback to the local output directory.
func ResolveDestination(opts DestinationOptions) (Destination, error) {
	if opts.GamePath != "" && exists(filepath.Join(opts.GamePath, GameExecutable)) {
		version, err := GameVersion(opts.GamePath)
		if err != nil {
			return Destination{}, fmt.Errorf("%w: %w", ErrGameVersion, err)
		}
		return Destination{
			Dir:         filepath.Join(opts.GamePath, ModsDirName, version),
			GameVersion: version,
		}, nil
	}

	if opts.OutputDir != "" && isDir(opts.OutputDir) {
		return Destination{Dir: opts.OutputDir}, nil
	}

	return Destination{Dir: CurrentDir}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
