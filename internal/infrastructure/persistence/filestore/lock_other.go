//go:build !unix

package filestore

import (
	"errors"
	"fmt"
	"os"
)

// LockFile is the name of the lock file inside the state directory.
const LockFile = ".lock"

// ErrLocked is returned when another process holds the state directory.
var ErrLocked = errors.New("state directory is locked by another process")

// DirLock is a no-op on platforms without flock.
type DirLock struct{}

// Lock only makes sure dir exists.
func Lock(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &DirLock{}, nil
}

// Unlock does nothing.
func (l *DirLock) Unlock() error {
	return nil
}
