package harvest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

const lockFile = ".harvest.lock"

// ErrLocked is returned when another process holds the directory lock.
var ErrLocked = errors.New("output directory is locked by another run")

// LockDir creates dir if needed and takes an exclusive advisory lock on it.
// The returned function releases the lock.
func LockDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, nodeschema.DirPerm); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	fl := flock.New(filepath.Join(dir, lockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return func() { _ = fl.Unlock() }, nil
}
