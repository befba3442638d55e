// Package scanner walks a tier's backing store and reports what it
// holds as (logical path, kind) entries. Walks are lazy and restartable:
// entries are produced during traversal, nothing is cached, and every
// call re-reads the filesystem from the root.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Entry is one node found under a scanned root.
type Entry struct {
	// Logical is the path relative to the scanned root
	Logical string

	// Kind tags the node. Symlinks inside a store count as files: they
	// are content to deploy, never followed.
	Kind types.Kind
}

// WalkFunc is called once per entry, directories before their contents.
// Returning fs.SkipDir on a directory prunes its subtree; any other
// error stops the walk and is returned to the caller.
type WalkFunc func(entry Entry) error

// Scanner walks directory trees through a types.FS.
type Scanner struct {
	fs     types.FS
	logger zerolog.Logger
}

// New creates a scanner over the given filesystem.
func New(fsys types.FS) *Scanner {
	return &Scanner{
		fs:     fsys,
		logger: logging.GetLogger("scanner"),
	}
}

// Walk traverses the tree rooted at root depth-first in lexical order.
// A missing root is an empty tree, not an error: tier stores come into
// existence lazily.
func (s *Scanner) Walk(root string, fn WalkFunc) error {
	info, err := s.fs.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to scan %s", root)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrFileAccess, "%s is not a directory", root)
	}

	return s.walkDir(root, "", fn)
}

func (s *Scanner) walkDir(root, logical string, fn WalkFunc) error {
	entries, err := s.fs.ReadDir(filepath.Join(root, logical))
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"failed to read directory %s", filepath.Join(root, logical))
	}

	for _, dirent := range entries {
		childLogical := dirent.Name()
		if logical != "" {
			childLogical = logical + "/" + dirent.Name()
		}

		entry := Entry{Logical: childLogical, Kind: types.KindFile}
		if dirent.IsDir() {
			entry.Kind = types.KindDir
		}

		if err := fn(entry); err != nil {
			if entry.Kind == types.KindDir && err == fs.SkipDir {
				continue
			}
			return err
		}

		if entry.Kind == types.KindDir {
			if err := s.walkDir(root, childLogical, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Tree returns every entry under root in walk order.
func (s *Scanner) Tree(root string) ([]Entry, error) {
	var found []Entry
	err := s.Walk(root, func(entry Entry) error {
		found = append(found, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("root", root).
		Int("entries", len(found)).
		Msg("tree scanned")
	return found, nil
}

// Children returns only the immediate children of root.
func (s *Scanner) Children(root string) ([]Entry, error) {
	var found []Entry
	err := s.Walk(root, func(entry Entry) error {
		found = append(found, entry)
		if entry.Kind == types.KindDir {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Exists reports whether logical is present under root, and its kind.
func (s *Scanner) Exists(root, logical string) (types.Kind, bool) {
	info, err := s.fs.Lstat(filepath.Join(root, logical))
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return types.KindDir, true
	}
	return types.KindFile, true
}
