// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"wotmodpack/internal/issue"
	"wotmodpack/pkg/wotmod"
)

// describePackError turns a pipeline failure into an actionable error linked
// to the matching issue guide. Unknown failures keep their message with a
// generic operation.
func describePackError(err error, opts wotmod.Options) error {
	ctx := issue.NewErrorContext().Wrap(err)

	switch {
	case errors.Is(err, wotmod.ErrModNotFound):
		ctx.WithOperation("locate mod entry point").
			WithSuggestion("Name the entry script mod_<name>.py").
			WithSuggestion("Pass the mod directory with --source").
			WithIssue(issue.ModNotFoundId)
	case errors.Is(err, wotmod.ErrGameVersion):
		ctx.WithOperation("read game version").
			WithResource(opts.GamePath).
			WithSuggestion("Check that version.xml next to WorldOfTanks.exe has a <version> like v.1.19.1.0").
			WithIssue(issue.GameVersionUnreadableId)
	case errors.Is(err, wotmod.ErrCompilerNotFound):
		ctx.WithOperation("compile sources").
			WithSuggestion("Install Python 2.7 or point --python at it").
			WithIssue(issue.CompilerNotFoundId)
	case errors.Is(err, wotmod.ErrCompileFailed):
		ctx.WithOperation("compile sources").
			WithSuggestion("Fix the errors reported by the interpreter above").
			WithIssue(issue.CompileFailedId)
	case errors.Is(err, wotmod.ErrArchiveReplace):
		ctx.WithOperation("write archive").
			WithSuggestion("Close the game client and try again").
			WithIssue(issue.ArchiveReplaceFailedId)
	default:
		ctx.WithOperation("pack mod")
	}

	return ctx.BuildError()
}
