// Package buildtool invokes the external compiler/packager as a child
// process. The tool is an opaque collaborator: packwrap forwards
// arguments, streams its output live, and captures its exit code.
package buildtool

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	pkwerrors "github.com/arthur-debert/packwrap/pkg/errors"
	"github.com/arthur-debert/packwrap/pkg/logging"
	"github.com/rs/zerolog"
)

// Invocation describes one child-process run of the external tool.
type Invocation struct {
	Binary string
	Args   []string
	Dir    string
}

// Runner executes an invocation and reports its exit code. A non-zero
// exit code is not an error at this level; errors are reserved for
// spawn failures and cancellation.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (int, error)
}

// ExecRunner runs invocations through os/exec with inherited stdio
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a new exec-based runner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		logger: logging.GetLogger("buildtool.runner"),
	}
}

// Run executes the tool with working directory inv.Dir and the standard
// streams inherited, so the caller observes the tool's output live.
// Cancelling ctx kills the child; Run still waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (int, error) {
	if inv.Binary == "" {
		return -1, pkwerrors.New(pkwerrors.ErrInvalidInput, "invocation requires a tool binary")
	}

	logging.LogCommand(inv.Binary, inv.Args)
	r.logger.Info().
		Str("binary", inv.Binary).
		Strs("args", inv.Args).
		Str("workingDir", inv.Dir).
		Msg("Invoking build tool")

	cmd := exec.CommandContext(ctx, inv.Binary, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = os.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// Give the child a moment to die cleanly once the context cancels,
	// then collect it regardless.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		r.logger.Info().
			Str("binary", inv.Binary).
			Msg("Build tool finished")
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		r.logger.Warn().
			Int("exitStatus", code).
			Str("binary", inv.Binary).
			Msg("Build tool exited non-zero")
		return code, nil
	}

	r.logger.Error().
		Err(err).
		Str("binary", inv.Binary).
		Msg("Failed to spawn build tool")

	return -1, pkwerrors.Wrapf(err, pkwerrors.ErrBuildSpawn,
		"failed to spawn build tool: %s", inv.Binary)
}
