// Package manifest implements the transactional mutation of a crate
// manifest: take a snapshot of the original bytes, apply an exact
// substring patch, and restore the snapshot afterwards.
//
// The manifest is treated as opaque bytes on the patch path. Everything
// outside the patched substring is preserved verbatim, and the restore
// step writes back the exact original content. The snapshot is mirrored
// to a durable sibling backup file so an unclean termination can be
// recovered by replaying the restore.
package manifest
