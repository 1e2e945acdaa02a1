// Package paths provides centralized path handling for packwrap.
// All files packwrap touches live beside the crate manifest, so this
// package is the single place that knows their names.
package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/packwrap/pkg/errors"
)

// Well-known file names relative to the project root.
// IMPORTANT: the backup and lock suffixes are part of packwrap's on-disk
// contract: a recovery run on another packwrap version must find the same
// files. Do not change them between releases.
const (
	// ManifestName is the crate manifest file name
	ManifestName = "Cargo.toml"

	// BackupSuffix is appended to the manifest path for the durable snapshot
	BackupSuffix = ".packwrap.bak"

	// LockSuffix is appended to the manifest path for the advisory lock file
	LockSuffix = ".packwrap.lock"

	// ConfigFileName is the optional per-project configuration file
	ConfigFileName = "packwrap.toml"

	// OutputDirName is where the build tool leaves its artifacts
	OutputDirName = "pkg"
)

// Paths resolves the well-known file locations for one project root
type Paths struct {
	projectRoot string
}

// New creates a Paths instance rooted at projectRoot. An empty root
// means the current working directory.
func New(projectRoot string) (*Paths, error) {
	root := projectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to determine working directory")
		}
		root = cwd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid project root: %s", root)
	}

	return &Paths{projectRoot: abs}, nil
}

// ProjectRoot returns the absolute project root directory
func (p *Paths) ProjectRoot() string {
	return p.projectRoot
}

// ManifestPath returns the path to the crate manifest
func (p *Paths) ManifestPath() string {
	return filepath.Join(p.projectRoot, ManifestName)
}

// BackupPath returns the path to the durable snapshot beside the manifest
func (p *Paths) BackupPath() string {
	return p.ManifestPath() + BackupSuffix
}

// LockPath returns the path to the advisory lock file beside the manifest
func (p *Paths) LockPath() string {
	return p.ManifestPath() + LockSuffix
}

// ConfigPath returns the path to the optional project configuration file
func (p *Paths) ConfigPath() string {
	return filepath.Join(p.projectRoot, ConfigFileName)
}

// OutputDir returns the directory the build tool writes artifacts to
func (p *Paths) OutputDir() string {
	return filepath.Join(p.projectRoot, OutputDirName)
}
