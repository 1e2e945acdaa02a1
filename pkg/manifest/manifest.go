package manifest

import (
	"os"

	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// Snapshot holds the original manifest bytes for one invocation.
// Exactly one snapshot exists per run; it is taken before any mutation
// and consumed by Restore.
type Snapshot struct {
	Path string
	Data []byte
}

// TakeSnapshot reads the manifest fully into memory. A failure here
// means no mutation has happened and no restore is owed.
func TakeSnapshot(fsys types.FS, path string) (*Snapshot, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestRead,
			"failed to read manifest: %s", path)
	}

	logger := logging.GetLogger("manifest")
	logger.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Msg("Snapshot taken")

	return &Snapshot{Path: path, Data: data}, nil
}

// Restore writes the snapshot bytes back to the manifest path, fully
// replacing whatever is currently there. A failure here breaks the
// reversibility invariant and is reported with its own error code.
func Restore(fsys types.FS, snap *Snapshot) error {
	if err := writeFileSync(fsys, snap.Path, snap.Data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed,
			"failed to restore original manifest: %s", snap.Path)
	}

	logger := logging.GetLogger("manifest")
	logger.Debug().
		Str("path", snap.Path).
		Msg("Manifest restored")

	return nil
}

// WritePatched writes the patched content over the manifest. The write
// is synced so the external tool observes the patched manifest.
func WritePatched(fsys types.FS, path string, data []byte) error {
	if err := writeFileSync(fsys, path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write patched manifest: %s", path)
	}
	return nil
}

// writeFileSync replaces the file's content and syncs it to stable
// storage before returning.
func writeFileSync(fsys types.FS, path string, data []byte, perm os.FileMode) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
