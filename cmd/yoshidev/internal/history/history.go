package history

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/yoshimi/yoshidev/pkg/buildnum"
)

// Tracker records bumps for counter files under one repository root.
type Tracker struct {
	store Store
	root  string
	now   func() time.Time
}

// NewTracker creates a tracker storing its state under root.
func NewTracker(root string) *Tracker {
	return &Tracker{
		store: NewJSONStore(root),
		root:  root,
		now:   time.Now,
	}
}

// Status is the comparison of a counter file against its last recorded bump.
type Status struct {
	File string `json:"file"`

	// Entry is the last recorded bump, nil if the file was never bumped.
	Entry *Entry `json:"last_bump,omitempty"`

	// Digest is the xxHash64 of the file as it is now.
	Digest string `json:"digest"`

	// Modified reports that the file differs from the recorded digest.
	Modified bool `json:"modified"`
}

// Tracked reports whether the file has a recorded bump.
func (s Status) Tracked() bool {
	return s.Entry != nil
}

// Record stores rec as the latest bump of file. Concurrent callers are
// serialized on the store lock, so no bump count is lost.
func (t *Tracker) Record(file string, rec buildnum.Record) (*Entry, error) {
	digest, size, err := HashFile(file)
	if err != nil {
		return nil, err
	}

	unlock, err := t.store.Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := t.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	key := t.key(file)
	prev := st.Entries[key]
	entry := &Entry{
		File:     key,
		Marker:   rec.Marker,
		Value:    rec.Value,
		Digest:   digest,
		Size:     size,
		BumpedAt: t.now().UTC(),
		Bumps:    1,
	}
	if prev != nil {
		entry.Bumps = prev.Bumps + 1
	}
	st.Entries[key] = entry

	if err := t.store.Save(st); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	return entry, nil
}

// Status compares file with its last recorded bump without modifying state.
func (t *Tracker) Status(file string) (Status, error) {
	digest, _, err := HashFile(file)
	if err != nil {
		return Status{}, err
	}

	st, err := t.store.Load()
	if err != nil {
		return Status{}, fmt.Errorf("failed to load state: %w", err)
	}

	key := t.key(file)
	s := Status{File: key, Digest: digest, Entry: st.Entries[key]}
	if s.Entry != nil {
		s.Modified = s.Entry.Digest != digest
	}
	return s, nil
}

// HasState returns true if a previous state exists.
func (t *Tracker) HasState() bool {
	return t.store.Exists()
}

// Clear removes all recorded bumps.
func (t *Tracker) Clear() error {
	unlock, err := t.store.Lock()
	if err != nil {
		return err
	}
	defer unlock()
	return t.store.Clear()
}

// key returns file relative to the tracker root in slash form, falling back
// to the cleaned absolute path for files outside the root.
func (t *Tracker) key(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(file))
	}
	root, err := filepath.Abs(t.root)
	if err == nil {
		if rel, err := filepath.Rel(root, abs); err == nil && filepath.IsLocal(rel) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}
