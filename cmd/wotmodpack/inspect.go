// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path"
	"strings"

	"wotmodpack/pkg/wotmod"

	"github.com/spf13/cobra"
)

func newInspectCommand(app *App) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entries of a .wotmod archive",
		Long: `List the entries of a .wotmod archive with their size and compression method.

The game only loads archives whose entries are stored uncompressed, and a
packaged mod should not contain .py sources. Both are flagged; with --strict
they also make the command exit with status 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(app, args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 1 when problems are found")

	return cmd
}

func runInspect(app *App, archivePath string, strict bool) error {
	entries, err := wotmod.ListArchive(archivePath)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render(archivePath))
	fmt.Fprintln(app.stdout)

	var problems int
	var total uint64
	for _, e := range entries {
		if e.IsDir {
			fmt.Fprintf(app.stdout, "  %-8s %10s  %s\n", "", "", SubtitleStyle.Render(e.Name))
			continue
		}
		total += e.Size

		method := "stored"
		var notes []string
		if !e.Stored() {
			method = "deflated"
			notes = append(notes, "compressed entry")
		}
		if path.Ext(e.Name) == wotmod.SourceExt {
			notes = append(notes, "python source")
		}

		line := fmt.Sprintf("  %-8s %10d  %s", method, e.Size, e.Name)
		if len(notes) > 0 {
			problems++
			line += "  " + WarningStyle.Render("! "+strings.Join(notes, ", "))
		}
		fmt.Fprintln(app.stdout, line)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%d entries, %d bytes\n", len(entries), total)

	if problems == 0 {
		return nil
	}
	fmt.Fprintf(app.stdout, "%s %d entr%s need attention\n", WarningStyle.Render("!"), problems, plural(problems, "y", "ies"))
	if strict {
		return &ExitError{Code: 1}
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
