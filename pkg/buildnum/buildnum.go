// Package buildnum maintains the build counter line of a C header, e.g.
//
//	#define BUILD_NUMBER 41
//
// Increment rewrites that line in place with the next value. The file is
// scanned line by line; the first line containing the marker is the counter
// line. A file without one gets a new counter line at its end.
package buildnum

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMarker identifies the counter line in src/Misc/ConfBuild.h.
const DefaultMarker = "#define BUILD_NUMBER"

// DefaultFile is the counter file relative to the repository root.
const DefaultFile = "src/Misc/ConfBuild.h"

// ErrOverflow is returned when the counter cannot be incremented further.
var ErrOverflow = errors.New("build number overflow")

// Record is a counter line located in a file.
type Record struct {
	Marker string
	Value  int64

	// Offset is the byte offset of the start of the counter line.
	Offset int64

	// Found is false when the file had no counter line and the record
	// was appended at end of file.
	Found bool
}

// Line renders the record as it is stored on disk.
func (r Record) Line() string {
	return r.line("\n")
}

func (r Record) line(eol string) string {
	return r.Marker + " " + strconv.FormatInt(r.Value, 10) + eol
}

// String renders the record as reported to the user: the last word of the
// marker followed by the value ("BUILD_NUMBER 42").
func (r Record) String() string {
	return Label(r.Marker) + " " + strconv.FormatInt(r.Value, 10)
}

// Label returns the last whitespace-separated word of marker.
func Label(marker string) string {
	fields := strings.Fields(marker)
	if len(fields) == 0 {
		return marker
	}
	return fields[len(fields)-1]
}

// Current parses the text following the marker. Empty or non-numeric text
// counts as 0. A number too large for an int64 is ErrOverflow.
func Current(rest string) (int64, error) {
	n, ok, err := parse(rest)
	if err != nil || !ok {
		return 0, err
	}
	return n, nil
}

// Next returns the value written back for a counter line whose text after
// the marker is rest:
//
//   - blank text yields 0 (a fresh counter starts at zero)
//   - non-numeric or negative text yields 1
//   - a number N yields N+1
//
// A number that is already the largest int64, or beyond it, is ErrOverflow.
func Next(rest string) (int64, error) {
	if strings.TrimSpace(rest) == "" {
		return 0, nil
	}
	n, ok, err := parse(rest)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 1, nil
	}
	if n == math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrOverflow, n)
	}
	return n + 1, nil
}

// parse reports ok for a non-negative decimal number.
func parse(rest string) (int64, bool, error) {
	s := strings.TrimSpace(rest)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return 0, false, fmt.Errorf("%w: %s", ErrOverflow, s)
	}
	if err != nil || n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}
