// Package history records build counter bumps so that later runs can tell
// whether the counter file was edited by hand since the last bump.
package history

import "time"

// StateVersion is the current state file format version.
const StateVersion = 1

// Entry is the last recorded bump of one counter file.
type Entry struct {
	File     string    `json:"file"`
	Marker   string    `json:"marker"`
	Value    int64     `json:"value"`
	Digest   string    `json:"digest"` // xxHash64 hex of the file after the bump
	Size     int64     `json:"size"`
	BumpedAt time.Time `json:"bumped_at"`
	Bumps    int       `json:"bumps"`
}

// State is the persisted set of entries, keyed by slash-separated file path
// relative to the repository root.
type State struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Entries   map[string]*Entry `json:"entries"`
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Version: StateVersion,
		Entries: make(map[string]*Entry),
	}
}
