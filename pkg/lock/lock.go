// Package lock provides an advisory lock file beside the manifest so
// callers can serialize invocations against the same crate. It is an
// opt-in convenience: packwrap itself only guarantees correct cleanup
// for a single invocation, not mutual exclusion across processes.
package lock

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// Guard represents a held advisory lock
type Guard struct {
	fsys types.FS
	path string
}

// Acquire creates the lock file exclusively. If it already exists,
// another invocation holds it and acquisition fails fast.
func Acquire(fsys types.FS, path string) (*Guard, error) {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			holder := readHolder(fsys, path)
			return nil, errors.Newf(errors.ErrLockHeld,
				"lock file already exists: %s%s", path, holder)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to create lock file: %s", path)
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		_ = f.Close()
		_ = fsys.Remove(path)
		return nil, errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write lock file: %s", path)
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(path)
		return nil, errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write lock file: %s", path)
	}

	logger := logging.GetLogger("lock")
	logger.Debug().
		Str("path", path).
		Int("pid", os.Getpid()).
		Msg("Lock acquired")

	return &Guard{fsys: fsys, path: path}, nil
}

// Release removes the lock file. Releasing twice is harmless.
func (g *Guard) Release() error {
	err := g.fsys.Remove(g.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"failed to remove lock file: %s", g.path)
	}

	logger := logging.GetLogger("lock")
	logger.Debug().
		Str("path", g.path).
		Msg("Lock released")

	return nil
}

// readHolder formats the owning pid for the contention error message.
func readHolder(fsys types.FS, path string) string {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return ""
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return ""
	}
	return fmt.Sprintf(" (held by pid %s)", pid)
}
