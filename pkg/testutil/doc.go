// Package testutil provides shared helpers for packwrap tests: an
// in-memory project environment, a scriptable fake build tool runner,
// and fault-injecting filesystem wrappers.
package testutil
