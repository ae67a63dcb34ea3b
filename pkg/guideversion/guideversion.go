// Package guideversion stamps the program version into the heading of the
// HTML user guide.
//
// The version comes from the first word of src/version.txt. Two modes exist:
// SpliceTemplate regenerates the guide from a reference copy, SpliceInPlace
// rewrites the heading of the published guide directly, padding it to a
// fixed width so the diff touches only the version.
package guideversion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Marker is the heading text that precedes the version number.
const Marker = `<h1 style="text-align: center;">The Yoshimi User Guide V`

// Default locations relative to the repository root.
const (
	DefaultVersionFile = "src/version.txt"
	DefaultDocument    = "doc/yoshimi_user_guide/index.html"
	DefaultTemplate    = "indexref.html"
)

// padWidth is the column budget for the version plus its filler comment.
const padWidth = 10

var (
	// ErrNoVersion is returned when the version file has no version text.
	ErrNoVersion = errors.New("version file is empty")

	// ErrHeadingNotFound is returned when the document has no guide heading.
	ErrHeadingNotFound = errors.New("guide heading not found")
)

// ReadVersion returns the first word of the first line of path.
func ReadVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open version file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}

	version, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	if version == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoVersion)
	}
	return version, nil
}

// Render returns the heading line for version. The padded form appends an
// HTML comment of filler so that versions up to ten characters produce a
// heading of constant width.
func Render(version string, padded bool) string {
	var b strings.Builder
	b.WriteString("    ")
	b.WriteString(Marker)
	b.WriteString(version)
	if padded {
		b.WriteString("<!--")
		b.WriteString(strings.Repeat("x", max(0, padWidth-len(version))))
		b.WriteString("-->")
	}
	b.WriteString("</h1>\n")
	return b.String()
}

// IsHeading reports whether line carries the guide heading.
func IsHeading(line string) bool {
	return strings.Contains(line, Marker)
}
