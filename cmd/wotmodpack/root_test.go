// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"wotmodpack/internal/config"
	"wotmodpack/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v0.3.0"
		Commit = "9f1c2ab"
		BuildDate = "2026-03-02T18:00:00Z"

		got := getVersionString()
		want := "v0.3.0 (commit: 9f1c2ab, built: 2026-03-02T18:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		// Test binaries report Main.Version == "(devel)".
		Version = "dev"

		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q, want %q", got, "dev (built from source)")
		}
	})
}

func TestGlamourStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scheme config.ColorScheme
		want   string
	}{
		{config.ColorSchemeDark, "dark"},
		{config.ColorSchemeLight, "light"},
		{config.ColorSchemeAuto, "auto"},
		{"", "auto"},
	}
	for _, tt := range tests {
		if got := glamourStyle(tt.scheme); got != tt.want {
			t.Errorf("glamourStyle(%q) = %q, want %q", tt.scheme, got, tt.want)
		}
	}
}

func TestReportError(t *testing.T) {
	t.Parallel()

	tagged := issue.NewErrorContext().
		WithOperation("locate mod entry point").
		WithSuggestion("Pass the mod directory with --source").
		WithIssue(issue.ModNotFoundId).
		Wrap(errors.New("no file matching \"mod_*.py\"")).
		BuildError()

	tests := []struct {
		name     string
		err      error
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "silent exit error",
			err:      &ExitError{Code: 1},
			excludes: []string{"exit status"},
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"Error: ", "boom"},
		},
		{
			name:     "actionable error",
			err:      tagged,
			contains: []string{"failed to locate mod entry point", "--source"},
			excludes: []string{"Error chain", "No mod entry point found"},
		},
		{
			name:     "verbose renders issue guide",
			err:      tagged,
			verbose:  true,
			contains: []string{"Error chain", "No mod entry point found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			reportError(&buf, tt.err, &rootFlagValues{verbose: tt.verbose})
			out := buf.String()
			if len(tt.contains) == 0 && out != "" {
				t.Errorf("expected no output, got %q", out)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output should contain %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("output should not contain %q:\n%s", unwanted, out)
				}
			}
		})
	}
}
