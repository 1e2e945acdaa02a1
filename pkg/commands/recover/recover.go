// Package recover replays the restore step from a leftover manifest
// backup. A backup survives on disk exactly when an earlier run was
// killed after patching but before restoring, so replaying it brings
// the manifest back to its pre-run content.
package recover

import (
	"github.com/arthur-debert/packwrap/pkg/filesystem"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/manifest"
	"github.com/arthur-debert/packwrap/pkg/paths"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// Options holds options for the recover command
type Options struct {
	// ProjectRoot is the directory containing the crate manifest.
	// Empty means the current working directory.
	ProjectRoot string

	// FileSystem allows injecting a filesystem for testing
	FileSystem types.FS
}

// Run replays the restore from the backup file if one exists. When no
// backup is present there is nothing to do and the manifest is left
// untouched.
func Run(opts Options) (*types.RecoverResult, error) {
	logger := logging.GetLogger("commands.recover")

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	p, err := paths.New(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	res := &types.RecoverResult{
		ManifestPath: p.ManifestPath(),
		BackupPath:   p.BackupPath(),
	}

	stale, err := manifest.HasStaleBackup(fsys, p.BackupPath())
	if err != nil {
		return nil, err
	}
	if !stale {
		logger.Info().
			Str("backup", p.BackupPath()).
			Msg("No backup found, nothing to recover")
		return res, nil
	}

	snap, err := manifest.ReadBackup(fsys, p.BackupPath(), p.ManifestPath())
	if err != nil {
		return nil, err
	}

	if err := manifest.Restore(fsys, snap); err != nil {
		return nil, err
	}
	if err := manifest.RemoveBackup(fsys, p.BackupPath()); err != nil {
		return nil, err
	}

	logger.Info().
		Str("manifest", p.ManifestPath()).
		Msg("Manifest recovered from backup")

	res.Recovered = true
	return res, nil
}
