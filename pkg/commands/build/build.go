// Package build implements the transactional patch-build-restore
// workflow: snapshot the crate manifest, widen its declared crate
// types, invoke the external packager, and restore the original
// manifest on every exit path.
package build

import (
	"context"

	"github.com/arthur-debert/packwrap/pkg/buildtool"
	"github.com/arthur-debert/packwrap/pkg/config"
	"github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/filesystem"
	"github.com/arthur-debert/packwrap/pkg/lock"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/arthur-debert/packwrap/pkg/manifest"
	"github.com/arthur-debert/packwrap/pkg/paths"
	"github.com/arthur-debert/packwrap/pkg/types"
)

// Options holds options for the build command
type Options struct {
	// ProjectRoot is the directory containing the crate manifest.
	// Empty means the current working directory.
	ProjectRoot string

	// RawArgs are forwarded verbatim to the build tool after the fixed
	// arguments.
	RawArgs []string

	// Config is the resolved configuration. Loaded from the project
	// root when nil.
	Config *config.Config

	// FileSystem allows injecting a filesystem for testing
	FileSystem types.FS

	// Runner allows injecting a build tool runner for testing
	Runner buildtool.Runner
}

// Run executes one wrapped build. Once the snapshot is taken and the
// patched manifest is on disk, the restore is owed and runs on every
// return path, including cancellation of ctx. A restore failure takes
// precedence over the build tool's own outcome, because it means the
// shared manifest is left corrupted.
func Run(ctx context.Context, opts Options) (res *types.BuildResult, err error) {
	logger := logging.GetLogger("commands.build")

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	runner := opts.Runner
	if runner == nil {
		runner = buildtool.NewExecRunner()
	}

	p, err := paths.New(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	cfg := opts.Config
	if cfg == nil {
		cfg, err = config.Load(p.ConfigPath())
		if err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("projectRoot", p.ProjectRoot()).
		Strs("rawArgs", opts.RawArgs).
		Str("tool", cfg.Tool.Binary).
		Msg("Starting wrapped build")

	// A leftover backup means an earlier run died before restoring; the
	// manifest content is unknown and must be recovered first.
	stale, err := manifest.HasStaleBackup(fsys, p.BackupPath())
	if err != nil {
		return nil, err
	}
	if stale {
		return nil, errors.Newf(errors.ErrStaleBackup,
			"found leftover backup %s from an interrupted run; run 'packwrap recover' first",
			p.BackupPath())
	}

	if cfg.Lock.Enabled {
		guard, lockErr := lock.Acquire(fsys, p.LockPath())
		if lockErr != nil {
			return nil, lockErr
		}
		defer func() {
			if rerr := guard.Release(); rerr != nil {
				logger.Warn().Err(rerr).Msg("Failed to release lock")
			}
		}()
	}

	snap, err := manifest.TakeSnapshot(fsys, p.ManifestPath())
	if err != nil {
		return nil, err
	}

	outName, err := resolveOutName(cfg, snap)
	if err != nil {
		return nil, err
	}

	patched, err := cfg.Rule().Apply(snap.Data)
	if err != nil {
		// Nothing was written, nothing to undo.
		return nil, err
	}

	res = &types.BuildResult{
		ExitStatus: -1,
		OutName:    outName,
		OutputDir:  p.OutputDir(),
	}

	// The backup is the transaction log: it must be durable before the
	// patched bytes replace the original.
	if err := manifest.WriteBackup(fsys, snap, p.BackupPath()); err != nil {
		return nil, err
	}

	mutated := false
	defer func() {
		if !mutated {
			// The patched write never started; drop the backup.
			_ = manifest.RemoveBackup(fsys, p.BackupPath())
			return
		}
		if rerr := manifest.Restore(fsys, snap); rerr != nil {
			logger.Error().Err(rerr).Msg("Manifest restore failed, original state not recovered")
			res.Restored = false
			err = rerr
			return
		}
		res.Restored = true
		if rerr := manifest.RemoveBackup(fsys, p.BackupPath()); rerr != nil {
			logger.Warn().Err(rerr).Msg("Failed to remove manifest backup after restore")
		}
		logger.Debug().Msg("Manifest restored")
	}()

	mutated = true
	if werr := manifest.WritePatched(fsys, p.ManifestPath(), patched); werr != nil {
		return res, werr
	}

	inv := buildtool.Invocation{
		Binary: cfg.Tool.Binary,
		Args:   buildArgs(cfg, outName, opts.RawArgs),
		Dir:    p.ProjectRoot(),
	}

	code, runErr := runner.Run(ctx, inv)
	res.ExitStatus = code

	switch {
	case runErr != nil:
		err = runErr
	case ctx.Err() != nil:
		err = errors.Wrap(ctx.Err(), errors.ErrBuildTool, "build interrupted").
			WithDetail("exit_status", code)
	case code != 0:
		err = errors.Newf(errors.ErrBuildTool, "build tool exited with code %d", code).
			WithDetail("exit_status", code)
	}

	return res, err
}

// buildArgs assembles the fixed argument prefix followed by the
// caller's pass-through arguments.
func buildArgs(cfg *config.Config, outName string, rawArgs []string) []string {
	args := []string{"build", "--target", cfg.Tool.Target, "--out-name", outName}
	return append(args, rawArgs...)
}

// resolveOutName uses the configured name, falling back to the
// manifest's package name.
func resolveOutName(cfg *config.Config, snap *manifest.Snapshot) (string, error) {
	if cfg.Tool.OutName != "" {
		return cfg.Tool.OutName, nil
	}

	info, err := manifest.Inspect(snap.Data)
	if err != nil {
		return "", err
	}
	if info.Name == "" {
		return "", errors.New(errors.ErrConfigValid,
			"manifest has no package name and tool.out_name is not configured")
	}
	return info.Name, nil
}
