// Package filelock provides advisory whole-file locks for read-modify-write
// cycles on shared files such as the build counter header.
package filelock

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned by TryLock when another handle holds the lock.
var ErrLocked = errors.New("file is locked by another process")

// Lock blocks until an exclusive lock on f is acquired.
// The lock is released by Unlock or when f is closed.
func Lock(f *os.File) error {
	if err := lock(f); err != nil {
		return fmt.Errorf("lock %s: %w", f.Name(), err)
	}
	return nil
}

// TryLock acquires an exclusive lock on f without waiting.
// It returns ErrLocked if the lock is held elsewhere.
func TryLock(f *os.File) error {
	err := tryLock(f)
	if err == nil || errors.Is(err, ErrLocked) {
		return err
	}
	return fmt.Errorf("lock %s: %w", f.Name(), err)
}

// Unlock releases a lock taken with Lock or TryLock.
func Unlock(f *os.File) error {
	if err := unlock(f); err != nil {
		return fmt.Errorf("unlock %s: %w", f.Name(), err)
	}
	return nil
}
