package types

import (
	"io/fs"
)

// File is the subset of *os.File the transactional writes need.
// Sync is required so patched and restored content is durable on disk
// before the next step of the workflow begins.
type File interface {
	Write(p []byte) (n int, err error)
	Sync() error
	Close() error
}

// FS abstracts filesystem operations for testability
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)

	// Other operations
	Remove(name string) error
	Rename(oldpath, newpath string) error
}
