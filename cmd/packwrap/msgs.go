package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "Build a wasm crate without permanently widening its crate types"
	MsgRootLong = `packwrap wraps the external packager around your crate: it temporarily
adds "cdylib" to the manifest's crate-type declaration, runs the build
with your arguments forwarded, and always puts the manifest back exactly
as it was - even when the build fails or is interrupted.`

	MsgBuildShort = "Patch the manifest, run the packager, restore the manifest"
	MsgBuildLong = `Build snapshots Cargo.toml, rewrites its crate-type declaration to
include "cdylib", and invokes the packager with your arguments appended
after the fixed ones (build --target <target> --out-name <name>).

The original manifest content is written back once the packager exits,
no matter how it exits. While the build runs, a backup of the original
manifest sits beside it; if packwrap is killed hard enough that the
restore never runs, 'packwrap recover' replays it.`
	MsgBuildExample = `  packwrap build
  packwrap build --dir ./crates/core -- --dev
  packwrap build -- --features wasm-api`

	MsgRecoverShort = "Restore the manifest from a leftover backup"
	MsgRecoverLong = `Recover looks for a manifest backup left behind by a run that was
killed before it could restore the original content, and replays the
restore from it.`

	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgBuildSuccess   = "✨ Built %s → %s\n"
	MsgManifestBackOK = "Manifest restored."
	MsgRecovered      = "✔ Restored %s from %s\n"
	MsgNothingToDo    = "No backup found, manifest left untouched.\n"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDir     = "Project root containing Cargo.toml (default: current directory)"
	MsgFlagNoLock  = "Skip the advisory lock beside the manifest"
)
