// SPDX-License-Identifier: MPL-2.0

package wotmod

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"
)

const (
	// VersionManifest is the file in the game root that carries the client version.
	VersionManifest = "version.xml"

	versionElement = "version"
)

// versionPattern extracts "1.19.1.0" from text such as " v.1.19.1.0 #1234".
var versionPattern = regexp.MustCompile(`(?i)v\.(\d+(?:\.\d+)+)`)

// ExtractVersion returns the first dotted version prefixed by "v." in text.
func ExtractVersion(text string) (string, error) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("%w in %q", ErrVersionNotFound, strings.TrimSpace(text))
	}
	return m[1], nil
}

// GameVersion reads <gameRoot>/version.xml and returns the client version
// found in its <version> element.
func GameVersion(gameRoot string) (string, error) {
	path := filepath.Join(gameRoot, VersionManifest)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read game version manifest: %w", err)
	}

	text, err := versionText(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	version, err := ExtractVersion(text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return version, nil
}

// versionText returns the character data of the <version> element that is a
// direct child of the document root. Text inside nested elements is ignored.
func versionText(data []byte) (string, error) {
	l := xml.NewLexer(parse.NewInputBytes(data))

	depth := 0
	inVersion := false
	var text strings.Builder

	for {
		tt, raw := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("parse xml: %w", err)
			}
			if inVersion {
				return "", fmt.Errorf("parse xml: unterminated <%s> element", versionElement)
			}
			return "", ErrVersionElementMissing
		case xml.StartTagToken:
			depth++
			if depth == 2 && string(l.Text()) == versionElement {
				inVersion = true
			}
		case xml.StartTagCloseVoidToken:
			if inVersion && depth == 2 {
				return "", nil
			}
			depth--
		case xml.EndTagToken:
			if inVersion && depth == 2 {
				return html.UnescapeString(text.String()), nil
			}
			depth--
		case xml.TextToken:
			if inVersion && depth == 2 {
				text.Write(raw)
			}
		case xml.CDATAToken:
			if inVersion && depth == 2 {
				// CDATA is taken verbatim, so keep entities from being decoded later.
				text.WriteString(html.EscapeString(string(l.Text())))
			}
		}
	}
}
