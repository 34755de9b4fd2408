// SPDX-License-Identifier: MPL-2.0

// Package watch watches a mod source tree and reruns a build after changes.
//
// Events are filtered with doublestar globs and coalesced over a debounce
// window, so an editor's write-then-rename produces one rebuild. Rebuilds run
// on the watcher's own goroutine and therefore never overlap; events that
// arrive during a rebuild are collected for the next one.
package watch
