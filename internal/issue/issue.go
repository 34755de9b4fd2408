// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalogue entry.
type Id int

const (
	ModNotFoundId Id = iota + 1
	GameVersionUnreadableId
	CompilerNotFoundId
	CompileFailedId
	ConfigLoadFailedId
	ArchiveReplaceFailedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a catalogue entry: a Markdown guide for a known problem.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guide with glamour using the given style ("dark",
// "light", "auto" or a JSON style path). Links are appended as a
// "See also" list.
func (i *Issue) Render(style string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), style)
}

var (
	render = glamour.Render

	modNotFoundIssue = &Issue{
		id: ModNotFoundId,
		mdMsg: `
# No mod entry point found!

wotmodpack searches the source directory, recursively, for a file named
` + "`mod_<name>.py`" + `. The first match decides the mod name and the
directory that gets packed.

## Things you can try:
- Run wotmodpack from your mod's project directory, or pass it explicitly:
~~~
$ wotmodpack pack --source ./src
~~~
- Rename your entry script so it starts with ` + "`mod_`" + ` and ends with ` + "`.py`" + `
- Check ` + "`source_dir`" + ` in your config and ` + "`WOTMODPACK_SOURCE_DIR`",
	}

	gameVersionUnreadableIssue = &Issue{
		id: GameVersionUnreadableId,
		mdMsg: `
# Could not read the game version!

A game installation was found (` + "`WorldOfTanks.exe`" + ` exists), but the
version could not be taken from ` + "`version.xml`" + `. Archives are never
written elsewhere in that case, since a mod in the wrong folder is silently
ignored by the client.

## Things you can try:
- Check that ` + "`version.xml`" + ` sits next to ` + "`WorldOfTanks.exe`" + `
- Make sure its ` + "`<version>`" + ` element contains text like ` + "`v.1.19.1.0 #1234`" + `
- Verify the game installation with the launcher
- Print what wotmodpack detects:
~~~
$ wotmodpack game-version
~~~`,
	}

	compilerNotFoundIssue = &Issue{
		id: CompilerNotFoundId,
		mdMsg: `
# Python interpreter not found!

Sources are compiled with an external Python interpreter. The client loads
Python 2.7 bytecode, so the interpreter should be Python 2.7.

## Things you can try:
- Install Python 2.7 and make sure it is on your PATH
- Point wotmodpack at it:
~~~
$ wotmodpack pack --python "C:\Python27\python.exe"
~~~
- Or set ` + "`compiler.python`" + ` in your config file`,
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# Compilation failed!

The interpreter reported errors while compiling the mod sources. No archive
was written and the previous one, if any, was kept.

## Things you can try:
- Read the compiler output above for the failing file and line
- Check that the interpreter version matches the game (Python 2.7)
- Run with ` + "`--verbose`" + ` to see the full command line`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Compare it with a freshly generated one:
~~~
$ wotmodpack config dump
~~~
- Check ` + "`WOTMODPACK_*`" + ` variables in your environment and ` + "`.env`" + ` file`,
	}

	archiveReplaceFailedIssue = &Issue{
		id: ArchiveReplaceFailedId,
		mdMsg: `
# Could not replace the archive!

The new archive was built but the existing one could not be removed or
overwritten.

## Things you can try:
- Close the game client, which locks loaded mods
- Check permissions on the destination directory
- Use ` + "`--output-dir`" + ` to write the archive elsewhere`,
	}

	issues = map[Id]*Issue{
		modNotFoundIssue.Id():           modNotFoundIssue,
		gameVersionUnreadableIssue.Id(): gameVersionUnreadableIssue,
		compilerNotFoundIssue.Id():      compilerNotFoundIssue,
		compileFailedIssue.Id():         compileFailedIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		archiveReplaceFailedIssue.Id():  archiveReplaceFailedIssue,
	}
)

// Values returns every catalogue entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
