package guideversion

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yoshimi/yoshidev/internal/log"
)

// Result describes a completed splice.
type Result struct {
	Version string
	Path    string

	// Headings is the number of heading lines rewritten.
	Headings int
}

// SpliceTemplate writes output as a copy of template in which every heading
// line is replaced by the heading for version.
func SpliceTemplate(template, output, version string, padded bool) (Result, error) {
	src, err := os.Open(template)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open template: %w", err)
	}
	defer func() { _ = src.Close() }()

	res := Result{Version: version, Path: output}
	err = writeAtomic(output, func(w io.Writer) error {
		n, err := rewriteHeadings(src, w, version, padded, -1)
		res.Headings = n
		return err
	})
	if err != nil {
		return Result{}, err
	}

	log.Component("guide").Info("guide generated", "template", template, "output", output,
		"version", version, "headings", res.Headings)
	return res, nil
}

// SpliceInPlace rewrites the first heading line of document with the padded
// heading for version. The document is replaced atomically.
func SpliceInPlace(document, version string) (Result, error) {
	data, err := os.ReadFile(document)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read document: %w", err)
	}

	res := Result{Version: version, Path: document}
	var buf strings.Builder
	n, err := rewriteHeadings(bytes.NewReader(data), &buf, version, true, 1)
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{}, fmt.Errorf("%s: %w", document, ErrHeadingNotFound)
	}
	res.Headings = n

	err = writeAtomic(document, func(w io.Writer) error {
		_, err := io.WriteString(w, buf.String())
		return err
	})
	if err != nil {
		return Result{}, err
	}

	log.Component("guide").Info("guide heading updated", "document", document, "version", version)
	return res, nil
}

// rewriteHeadings copies r to w, replacing up to limit heading lines
// (limit < 0 means all).
func rewriteHeadings(r io.Reader, w io.Writer, version string, padded bool, limit int) (int, error) {
	br := bufio.NewReader(r)
	heading := Render(version, padded)
	replaced := 0

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			out := line
			if (limit < 0 || replaced < limit) && IsHeading(line) {
				out = heading
				replaced++
			}
			if _, werr := io.WriteString(w, out); werr != nil {
				return replaced, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return replaced, nil
		}
		if err != nil {
			return replaced, err
		}
	}
}

// writeAtomic writes path through a temp file in the same directory and
// renames it into place.
func writeAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpPath, 0o644)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
