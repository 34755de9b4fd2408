// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against embedded schemas and
// reports failures with JSON-path style field locations, for example
// "config.cue: compiler.max_levels: invalid value 0 (out of bound >=1)".
package cueutil
