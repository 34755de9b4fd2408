// SPDX-License-Identifier: MPL-2.0

// Package wotmod builds World of Tanks mod archives (.wotmod) from a tree of
// Python sources.
//
// A packaging run is a fixed pipeline:
//
//  1. Locate finds the mod entry point (mod_*.py) and derives the mod name.
//  2. ResolveDestination picks <game>/mods/<version> when a game install is
//     present, otherwise a local output directory.
//  3. BuildTree copies the sources under res/scripts/client/gui/mods inside a
//     scratch directory, compiles them and strips the .py files.
//  4. Archive stores the scratch tree into <destination>/<mod>.wotmod,
//     replacing any previous archive.
//
// Pack runs the whole pipeline. The scratch directory is acquired with
// AcquireScratchDir and always released when Pack returns.
package wotmod
