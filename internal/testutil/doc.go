// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by package tests: environment and
// working-directory overrides that restore themselves, and builders for mod
// source trees and fake game installations on disk.
package testutil
