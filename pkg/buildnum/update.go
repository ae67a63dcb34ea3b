package buildnum

import (
	"fmt"
	"io"
	"os"

	"github.com/yoshimi/yoshidev/internal/filelock"
	"github.com/yoshimi/yoshidev/internal/log"
)

// Options controls Increment.
type Options struct {
	// Marker identifies the counter line. Defaults to DefaultMarker.
	Marker string

	// TruncateTail drops everything after the rewritten counter line.
	// Older tooling did this unconditionally; it is off by default.
	TruncateTail bool

	// NoLock skips the exclusive file lock around the update.
	NoLock bool

	// NoWait fails with filelock.ErrLocked instead of waiting when another
	// process holds the lock.
	NoWait bool
}

func (o Options) marker() string {
	if o.Marker == "" {
		return DefaultMarker
	}
	return o.Marker
}

// Increment bumps the counter line in the file at path and returns the
// record as written. The file must already exist; it is never created.
//
// The read-modify-write cycle runs under an exclusive advisory lock, so
// concurrent invocations against the same file serialize instead of losing
// updates.
func Increment(path string, opts Options) (Record, error) {
	logger := log.Component("buildnum")
	marker := opts.marker()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return Record{}, fmt.Errorf("failed to open counter file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if !opts.NoLock {
		if err := lockCounter(f, opts.NoWait); err != nil {
			return Record{}, err
		}
		defer func() { _ = filelock.Unlock(f) }()
	}

	loc, err := scan(f, marker)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read counter file: %w", err)
	}

	rec := Record{Marker: marker, Offset: loc.offset, Found: loc.found}
	var out []byte

	if loc.found {
		if rec.Value, err = Next(loc.rest); err != nil {
			return Record{}, fmt.Errorf("%s: %w", path, err)
		}
		out = []byte(rec.line(loc.eol))
		if !opts.TruncateTail {
			tail, err := readFrom(f, loc.offset+int64(loc.length))
			if err != nil {
				return Record{}, fmt.Errorf("failed to read counter file: %w", err)
			}
			out = append(out, tail...)
		}
	} else {
		rec.Value = 1
		if loc.unterminated {
			out = append(out, loc.eol...)
			rec.Offset += int64(len(loc.eol))
		}
		out = append(out, rec.line(loc.eol)...)
		logger.Info("marker not found, appending counter line", "file", path, "marker", marker)
	}

	if _, err := f.WriteAt(out, loc.offset); err != nil {
		return Record{}, fmt.Errorf("failed to write counter file: %w", err)
	}
	if err := f.Truncate(loc.offset + int64(len(out))); err != nil {
		return Record{}, fmt.Errorf("failed to truncate counter file: %w", err)
	}

	logger.Debug("counter rewritten", "file", path, "offset", rec.Offset, "value", rec.Value)
	return rec, nil
}

func lockCounter(f *os.File, noWait bool) error {
	if noWait {
		return filelock.TryLock(f)
	}
	log.Component("buildnum").Debug("waiting for lock", "file", f.Name())
	return filelock.Lock(f)
}

// Read locates the counter line without modifying the file.
func Read(path, marker string) (Record, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("failed to open counter file: %w", err)
	}
	defer func() { _ = f.Close() }()

	loc, err := scan(f, marker)
	if err != nil {
		return Record{}, fmt.Errorf("failed to read counter file: %w", err)
	}

	rec := Record{Marker: marker, Offset: loc.offset, Found: loc.found}
	if loc.found {
		if rec.Value, err = Current(loc.rest); err != nil {
			return Record{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return rec, nil
}

// readFrom returns the file contents from off to end of file.
func readFrom(f *os.File, off int64) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if off >= info.Size() {
		return nil, nil
	}
	return io.ReadAll(io.NewSectionReader(f, off, info.Size()-off))
}
