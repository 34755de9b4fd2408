// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalogue of known problems.
//
// An ActionableError says what was attempted, on which resource, and how to
// fix it. When it is tagged with an issue Id, the CLI can render the matching
// Markdown guide from the catalogue with glamour.
package issue
