package session

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another process holds the storage lock.
var ErrAlreadyRunning = errors.New("another moflex instance owns the storage root")

// Lock takes the single-writer lock at path. The protocol assumes one writer
// on the storage root and the state file.
func Lock(path string) (*flock.Flock, error) {
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return l, nil
}
