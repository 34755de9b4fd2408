// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the wotmodpack CLI commands.
//
// Commands are built around an App, the composition root holding the config
// provider, the compiler factory and the output writers, so tests can run the
// full command tree against fakes.
package cmd
