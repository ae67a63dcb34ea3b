package buildnum

import (
	"bufio"
	"io"
	"strings"

	"github.com/yoshimi/yoshidev/internal/log"
)

// location is the outcome of scanning a file for the counter line.
type location struct {
	found bool

	// offset is the start of the counter line, or end of file when
	// the marker was not found.
	offset int64

	// length is the byte length of the counter line including its newline.
	length int

	// rest is the text after the marker on the counter line.
	rest string

	// eol is the line terminator to write: the counter line's own, or the
	// last one seen when the marker was not found. "\n" when the file has
	// none.
	eol string

	// unterminated reports that a non-empty file does not end with a
	// newline, so an appended record needs one first.
	unterminated bool
}

func scan(r io.Reader, marker string) (location, error) {
	br := bufio.NewReader(r)
	var (
		offset     int64
		terminated = true
		eol        = "\n"
	)

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			log.Trace("scan line", "offset", offset, "bytes", len(line))
			terminated = strings.HasSuffix(line, "\n")
			if terminated {
				eol = lineEnding(line)
			}
			if i := strings.Index(line, marker); i >= 0 {
				rest := strings.TrimRight(line[i+len(marker):], "\r\n")
				return location{
					found:  true,
					offset: offset,
					length: len(line),
					rest:   rest,
					eol:    eol,
				}, nil
			}
			offset += int64(len(line))
		}
		if err == io.EOF {
			return location{offset: offset, unterminated: !terminated, eol: eol}, nil
		}
		if err != nil {
			return location{}, err
		}
	}
}

// lineEnding returns the terminator of a newline-terminated line.
func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
