package main

import (
	"github.com/arthur-debert/packwrap/pkg/errors"
)

// Reserved exit codes for the wrapper's own failure classes. The build
// tool's exit code is passed through untouched, so these sit above the
// range tools normally use and stay distinguishable for callers.
const (
	ExitManifestRead  = 120
	ExitPatchMismatch = 121
	ExitRestoreFailed = 122
	ExitBuildSpawn    = 123
	ExitLockHeld      = 124
	ExitStaleBackup   = 125

	exitGenericFailure = 1
)

// exitCodeFor maps an error from a command to the process exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	switch errors.GetErrorCode(err) {
	case errors.ErrManifestRead:
		return ExitManifestRead
	case errors.ErrPatchMismatch:
		return ExitPatchMismatch
	case errors.ErrRestoreFailed:
		return ExitRestoreFailed
	case errors.ErrBuildSpawn:
		return ExitBuildSpawn
	case errors.ErrLockHeld:
		return ExitLockHeld
	case errors.ErrStaleBackup:
		return ExitStaleBackup
	case errors.ErrBuildTool:
		// Pass the tool's own exit code through.
		if details := errors.GetErrorDetails(err); details != nil {
			if code, ok := details["exit_status"].(int); ok && code > 0 {
				return code
			}
		}
		return exitGenericFailure
	default:
		return exitGenericFailure
	}
}
