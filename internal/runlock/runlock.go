// Package runlock prevents two concurrent invocations of the job from
// racing each other on the ledger file and the repository.
package runlock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
)

// ErrHeld is returned when another invocation currently holds the lock.
var ErrHeld = errors.New("another run is already in progress")

// Lock is a pid-file lock acquired with an exclusive create.
type Lock struct {
	path string
}

// Acquire creates the lock file, failing with ErrHeld if it already exists.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrHeld)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}

	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("close lock %s: %w", path, err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}
