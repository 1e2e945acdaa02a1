package manifest

import (
	"os"

	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// The backup file is the transaction log for one invocation: it is
// written (and synced) before the patched manifest hits disk, and
// removed only after a successful restore. Its presence on startup
// therefore means an earlier run died mid-transaction.

// WriteBackup persists the snapshot to its sibling backup path.
func WriteBackup(fsys types.FS, snap *Snapshot, backupPath string) error {
	if err := writeFileSync(fsys, backupPath, snap.Data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write manifest backup: %s", backupPath)
	}

	logger := logging.GetLogger("manifest")
	logger.Debug().
		Str("path", backupPath).
		Msg("Backup written")

	return nil
}

// RemoveBackup deletes the backup file after a successful restore.
// A missing backup is not an error.
func RemoveBackup(fsys types.FS, backupPath string) error {
	err := fsys.Remove(backupPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"failed to remove manifest backup: %s", backupPath)
	}
	return nil
}

// HasStaleBackup reports whether a backup from an earlier, uncleanly
// terminated run is still on disk.
func HasStaleBackup(fsys types.FS, backupPath string) (bool, error) {
	if _, err := fsys.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess,
			"failed to check manifest backup: %s", backupPath)
	}
	return true, nil
}

// ReadBackup loads a backup file as a snapshot targeting manifestPath,
// so a recovery run can replay the restore.
func ReadBackup(fsys types.FS, backupPath, manifestPath string) (*Snapshot, error) {
	data, err := fsys.ReadFile(backupPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestRead,
			"failed to read manifest backup: %s", backupPath)
	}
	return &Snapshot{Path: manifestPath, Data: data}, nil
}
