package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/yoshimi/yoshidev/internal/filelock"
)

const (
	// stateDir is the directory name for yoshidev state files.
	stateDir = ".yoshidev"

	// stateFile is the name of the state file.
	stateFile = "state.json"

	// lockFile serializes read-modify-write cycles on the state file.
	lockFile = "state.lock"
)

// Store defines the interface for state persistence.
type Store interface {
	Load() (*State, error)
	Save(st *State) error
	Exists() bool
	Clear() error

	// Lock holds off other writers until the returned func is called.
	Lock() (func(), error)
}

// JSONStore implements Store using a JSON file.
type JSONStore struct {
	dir  string
	path string
}

// NewJSONStore creates a store writing .yoshidev/state.json under root.
func NewJSONStore(root string) *JSONStore {
	dir := filepath.Join(root, stateDir)
	return &JSONStore{
		dir:  dir,
		path: filepath.Join(dir, stateFile),
	}
}

// Load reads the state from disk. A missing state file yields an empty state.
func (s *JSONStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if st.Version > StateVersion {
		return nil, fmt.Errorf("state file version %d is newer than supported version %d", st.Version, StateVersion)
	}

	if st.Entries == nil {
		st.Entries = make(map[string]*Entry)
	}

	return &st, nil
}

// Save writes the state to disk atomically.
func (s *JSONStore) Save(st *State) error {
	if st == nil {
		return errors.New("cannot save nil state")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	st.UpdatedAt = time.Now()
	st.Version = StateVersion

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write to temp file first for atomic update
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	return nil
}

// Exists returns true if the state file exists.
func (s *JSONStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Clear removes the state file.
func (s *JSONStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Lock takes an exclusive lock on .yoshidev/state.lock. Platforms without
// file locks run unlocked.
func (s *JSONStore) Lock() (func(), error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, lockFile), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open state lock: %w", err)
	}
	if err := filelock.Lock(f); err != nil {
		_ = f.Close()
		if errors.Is(err, errors.ErrUnsupported) {
			return func() {}, nil
		}
		return nil, err
	}

	return func() {
		_ = filelock.Unlock(f)
		_ = f.Close()
	}, nil
}
