package types

// BuildResult describes the outcome of one wrapped build invocation.
type BuildResult struct {
	// ExitStatus is the external tool's exit code. It is only meaningful
	// when the invocation actually ran; spawn failures leave it at -1.
	ExitStatus int

	// OutName is the artifact name passed to the tool via --out-name.
	OutName string

	// OutputDir is where the tool leaves its artifacts.
	OutputDir string

	// Restored reports whether the manifest was written back to its
	// original content. False either because no mutation happened or
	// because the restore itself failed (the latter is also surfaced
	// as an error).
	Restored bool
}

// RecoverResult describes the outcome of a backup replay.
type RecoverResult struct {
	Recovered    bool
	ManifestPath string
	BackupPath   string
}
