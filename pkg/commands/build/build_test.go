// pkg/commands/build/build_test.go
// TEST TYPE: Business Logic Integration
// DEPENDENCIES: Memory FS, Fake Runner
// PURPOSE: Test the patch-build-restore transaction and its restore guarantees

package build_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/arthur-debert/packwrap/pkg/buildtool"
	"github.com/arthur-debert/packwrap/pkg/commands/build"
	"github.com/arthur-debert/packwrap/pkg/config"
	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/manifest"
	"github.com/arthur-debert/packwrap/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Tool: config.ToolConfig{
			Binary: "wasm-pack",
			Target: "bundler",
		},
		Patch: config.PatchConfig{
			From: manifest.DefaultRule.From,
			To:   manifest.DefaultRule.To,
		},
		Lock: config.LockConfig{Enabled: true},
	}
}

func TestRun_SuccessRestoresManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	runner := &testutil.FakeRunner{ExitCode: 0}

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitStatus)
	assert.True(t, res.Restored)
	assert.Equal(t, testutil.SampleManifest, env.ReadManifest(),
		"manifest must be byte-for-byte identical after a successful run")
	assert.False(t, env.BackupExists(), "backup must be removed after restore")
}

func TestRun_ToolSeesPatchedManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	var seen string
	runner := &testutil.FakeRunner{
		OnRun: func(ctx context.Context, inv buildtool.Invocation) (int, error) {
			data, err := env.FS.ReadFile(env.Paths.ManifestPath())
			require.NoError(t, err)
			seen = string(data)
			return 0, nil
		},
	}

	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.NoError(t, err)
	assert.Contains(t, seen, `crate-type = ["rlib", "cdylib"]`,
		"the tool must observe the widened crate types")
	assert.False(t, env.BackupExists())
}

func TestRun_PassThroughArguments(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	runner := &testutil.FakeRunner{ExitCode: 0}

	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		RawArgs:     []string{"--dev"},
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})
	require.NoError(t, err)

	require.Len(t, runner.Calls, 1)
	inv := runner.Calls[0]
	assert.Equal(t, "wasm-pack", inv.Binary)
	assert.Equal(t, env.Paths.ProjectRoot(), inv.Dir)
	assert.Equal(t,
		[]string{"build", "--target", "bundler", "--out-name", "rojo", "--dev"},
		inv.Args)
}

func TestRun_OutNameFromConfigWins(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	runner := &testutil.FakeRunner{ExitCode: 0}

	cfg := testConfig()
	cfg.Tool.OutName = "custom"

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      cfg,
		FileSystem:  env.FS,
		Runner:      runner,
	})
	require.NoError(t, err)

	assert.Equal(t, "custom", res.OutName)
	assert.Contains(t, runner.Calls[0].Args, "custom")
}

func TestRun_ExitCodePropagation(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	runner := &testutil.FakeRunner{ExitCode: 3}

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildTool))
	assert.Equal(t, 3, res.ExitStatus)
	assert.Equal(t, 3, errors.GetErrorDetails(err)["exit_status"])

	// Restore still ran.
	assert.True(t, res.Restored)
	assert.Equal(t, testutil.SampleManifest, env.ReadManifest())
	assert.False(t, env.BackupExists())
}

func TestRun_SpawnFailureStillRestores(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	spawnErr := errors.New(errors.ErrBuildSpawn, "executable not found")
	runner := &testutil.FakeRunner{Err: spawnErr}

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildSpawn))
	assert.True(t, res.Restored)
	assert.Equal(t, testutil.SampleManifest, env.ReadManifest())
}

func TestRun_MismatchLeavesManifestUntouched(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	content := "[package]\nname = \"other\"\n\n[lib]\ncrate-type = [\"staticlib\"]\n"
	env.WriteManifest(content)

	runner := &testutil.FakeRunner{ExitCode: 0}
	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatchMismatch))
	assert.Empty(t, runner.Calls, "the tool must not run when the patch fails")
	assert.Equal(t, content, env.ReadManifest())
	assert.False(t, env.BackupExists())
}

func TestRun_DuplicatePatternLeavesManifestUntouched(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	content := "[lib]\ncrate-type = [\"rlib\"]\n\n[other]\ncrate-type = [\"rlib\"]\n"
	env.WriteManifest(content)

	runner := &testutil.FakeRunner{ExitCode: 0}
	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPatchMismatch))
	assert.Equal(t, 2, errors.GetErrorDetails(err)["occurrences"])
	assert.Empty(t, runner.Calls, "the tool must not run on an ambiguous patch")
	assert.Equal(t, content, env.ReadManifest())
	assert.False(t, env.BackupExists())
}

func TestRun_MissingManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, env.FS.Remove(env.Paths.ManifestPath()))

	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      &testutil.FakeRunner{},
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestRead))
}

func TestRun_InterruptionRestoresBeforeReturn(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &testutil.FakeRunner{
		OnRun: func(ctx context.Context, inv buildtool.Invocation) (int, error) {
			// A long-running tool that only stops when interrupted.
			cancel()
			select {
			case <-ctx.Done():
				return -1, nil
			case <-time.After(10 * time.Second):
				return 0, nil
			}
		},
	}

	res, err := build.Run(ctx, build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrBuildTool))
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.True(t, res.Restored, "restore must run on the interruption path")
	assert.Equal(t, testutil.SampleManifest, env.ReadManifest())
}

func TestRun_RestoreFailureTakesPrecedence(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	fault := &testutil.FaultFS{
		FS:          env.FS,
		FailWriteTo: env.Paths.ManifestPath(),
		FailErr:     stderrors.New("read-only file system"),
	}

	runner := &testutil.FakeRunner{
		OnRun: func(ctx context.Context, inv buildtool.Invocation) (int, error) {
			// Break manifest writes only after the patch went through.
			fault.Arm = true
			return 0, nil
		},
	}

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  fault,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRestoreFailed),
		"a broken restore must be reported even though the build succeeded")
	assert.False(t, res.Restored)

	// The backup survives for a later recovery.
	assert.True(t, env.BackupExists())
}

func TestRun_RestoreFailureOutranksToolFailure(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	fault := &testutil.FaultFS{
		FS:          env.FS,
		FailWriteTo: env.Paths.ManifestPath(),
		FailErr:     stderrors.New("read-only file system"),
	}

	runner := &testutil.FakeRunner{
		OnRun: func(ctx context.Context, inv buildtool.Invocation) (int, error) {
			fault.Arm = true
			return 7, nil
		},
	}

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  fault,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRestoreFailed),
		"the broken restore must outrank the tool's own failure")
	assert.Equal(t, 7, res.ExitStatus)
	assert.False(t, res.Restored)
	assert.True(t, env.BackupExists(), "the backup must survive for recovery")
}

func TestRun_StaleBackupRefusal(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, env.FS.WriteFile(env.Paths.BackupPath(), []byte("old content"), 0644))

	runner := &testutil.FakeRunner{}
	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      runner,
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStaleBackup))
	assert.Empty(t, runner.Calls)
}

func TestRun_LockContention(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, env.FS.WriteFile(env.Paths.LockPath(), []byte("4242\n"), 0644))

	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      &testutil.FakeRunner{},
	})

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLockHeld))
}

func TestRun_LockDisabled(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, env.FS.WriteFile(env.Paths.LockPath(), []byte("4242\n"), 0644))

	cfg := testConfig()
	cfg.Lock.Enabled = false

	res, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      cfg,
		FileSystem:  env.FS,
		Runner:      &testutil.FakeRunner{ExitCode: 0},
	})

	require.NoError(t, err)
	assert.True(t, res.Restored)
}

func TestRun_LockReleasedAfterRun(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	_, err := build.Run(context.Background(), build.Options{
		ProjectRoot: env.Paths.ProjectRoot(),
		Config:      testConfig(),
		FileSystem:  env.FS,
		Runner:      &testutil.FakeRunner{ExitCode: 0},
	})
	require.NoError(t, err)

	_, err = env.FS.Stat(env.Paths.LockPath())
	assert.Error(t, err, "lock file must be removed after the run")
}
