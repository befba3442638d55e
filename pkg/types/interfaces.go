package types

import (
	"io/fs"
)

// FS is the filesystem interface required for dotfold operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Chmod(name string, mode fs.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat reports on the link itself, never following it.
	// For testing, implementations without symlink support can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}
