// pkg/testutil/mocks.go
// DEPENDENCIES: None
// PURPOSE: Scriptable fakes for the build tool runner and filesystem faults

package testutil

import (
	"context"
	"io/fs"

	"github.com/arthur-debert/packwrap/pkg/buildtool"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// FakeRunner records invocations and returns a scripted outcome instead
// of spawning a child process.
type FakeRunner struct {
	// ExitCode is returned when OnRun is nil
	ExitCode int

	// Err is returned when OnRun is nil (spawn-failure simulation)
	Err error

	// OnRun, when set, fully controls the outcome. Useful for observing
	// the on-disk state mid-invocation or blocking until ctx is done.
	OnRun func(ctx context.Context, inv buildtool.Invocation) (int, error)

	// Calls records every invocation in order
	Calls []buildtool.Invocation
}

// Run implements buildtool.Runner
func (r *FakeRunner) Run(ctx context.Context, inv buildtool.Invocation) (int, error) {
	r.Calls = append(r.Calls, inv)
	if r.OnRun != nil {
		return r.OnRun(ctx, inv)
	}
	if r.Err != nil {
		return -1, r.Err
	}
	return r.ExitCode, nil
}

// FaultFS wraps a types.FS and fails selected operations, for forcing
// restore and backup failures.
type FaultFS struct {
	types.FS

	// FailWriteTo makes any write (WriteFile or OpenFile for writing)
	// against this exact path fail with FailErr.
	FailWriteTo string

	// FailErr is the error injected; required when FailWriteTo is set
	FailErr error

	// Arm gates the fault: writes only fail once armed, so a test can
	// let the patch write through and then break the restore.
	Arm bool
}

func (f *FaultFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if f.Arm && name == f.FailWriteTo {
		return f.FailErr
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FaultFS) OpenFile(name string, flag int, perm fs.FileMode) (types.File, error) {
	if f.Arm && name == f.FailWriteTo {
		return nil, f.FailErr
	}
	return f.FS.OpenFile(name, flag, perm)
}
