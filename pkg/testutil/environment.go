// pkg/testutil/environment.go
// DEPENDENCIES: Memory FS
// PURPOSE: Orchestrate in-memory crate projects for tests

package testutil

import (
	"testing"

	"github.com/arthur-debert/packwrap/pkg/filesystem"
	"github.com/arthur-debert/packwrap/pkg/paths"
	"github.com/arthur-debert/packwrap/pkg/types"
	"github.com/stretchr/testify/require"
)

// SampleManifest is a minimal crate manifest carrying the patchable
// crate-type declaration.
const SampleManifest = `[package]
name = "rojo"
version = "7.4.0"

[lib]
crate-type = ["rlib"]

[dependencies]
serde = "1.0"
`

// TestEnvironment provides an in-memory crate project
type TestEnvironment struct {
	FS    types.FS
	Paths *paths.Paths

	t *testing.T
}

// NewTestEnvironment creates a project rooted at /crate with the sample
// manifest already in place.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	fsys := filesystem.NewMemory()
	p, err := paths.New("/crate")
	require.NoError(t, err)

	env := &TestEnvironment{FS: fsys, Paths: p, t: t}
	env.WriteManifest(SampleManifest)
	return env
}

// WriteManifest replaces the manifest content
func (e *TestEnvironment) WriteManifest(content string) {
	e.t.Helper()
	require.NoError(e.t, e.FS.WriteFile(e.Paths.ManifestPath(), []byte(content), 0644))
}

// ReadManifest returns the current manifest content
func (e *TestEnvironment) ReadManifest() string {
	e.t.Helper()
	data, err := e.FS.ReadFile(e.Paths.ManifestPath())
	require.NoError(e.t, err)
	return string(data)
}

// BackupExists reports whether the sibling backup file is on disk
func (e *TestEnvironment) BackupExists() bool {
	e.t.Helper()
	_, err := e.FS.Stat(e.Paths.BackupPath())
	return err == nil
}
