// Package unfold moves backing content between tier stores when a
// narrow claim takes a path over from a broader tier.
//
// Detection happens during resolution: the resolver records a Conflict
// for every common directory that loses whole-directory deployment and
// a Migration for every claim whose backing content still sits under
// another tier's store. This package presents those records as
// per-directory plans and applies the migrations. A file moves as
// copy-to-temp, rename into place, remove source, so no reader ever
// observes it half-written. Directory moves relocate files one by one,
// skipping ignored paths, which stay behind in the source store.
package unfold

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Unfolder applies backing-content migrations between tier stores.
type Unfolder struct {
	fs      types.FS
	scan    *scanner.Scanner
	matcher *ignore.Matcher
	logger  zerolog.Logger
}

// New creates an Unfolder. The matcher carries the manifest's ignore
// patterns; ignored paths inside a migrating directory are left in the
// source store.
func New(fsys types.FS, matcher *ignore.Matcher) *Unfolder {
	return &Unfolder{
		fs:      fsys,
		scan:    scanner.New(fsys),
		matcher: matcher,
		logger:  logging.GetLogger("unfold"),
	}
}

// Result reports the migrations Apply performed, or would perform in
// dry-run mode.
type Result struct {
	Moved  []string
	DryRun bool
}

// Apply moves each migration's backing content into the claiming
// tier's store. The first failure aborts the remaining migrations:
// completed moves are durable, and a re-run converges because content
// already at its destination counts as done.
func (u *Unfolder) Apply(migrations []resolver.Migration, dryRun bool) (*Result, error) {
	result := &Result{DryRun: dryRun}
	for _, m := range migrations {
		u.logger.Info().
			Str("logical", m.Logical).
			Str("from", m.From).
			Str("to", m.To).
			Bool("dry_run", dryRun).
			Msg("migrating backing content")
		if dryRun {
			result.Moved = append(result.Moved, m.Logical)
			continue
		}

		var err error
		if m.Kind == types.KindDir {
			err = u.moveDir(m)
		} else {
			err = u.moveFile(m.From, m.To)
		}
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrUnfoldFailed, "migrating %s", m.Logical)
		}
		result.Moved = append(result.Moved, m.Logical)
	}
	return result, nil
}

// moveFile relocates one file between stores. The copy lands under a
// temporary name next to the destination and is renamed into place. A
// destination that already exists is an earlier run's completed copy,
// so only the source is removed.
func (u *Unfolder) moveFile(from, to string) error {
	if _, err := u.fs.Lstat(to); err == nil {
		if err := u.fs.Remove(from); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	info, err := u.fs.Stat(from)
	if err != nil {
		return err
	}
	data, err := u.fs.ReadFile(from)
	if err != nil {
		return err
	}
	if err := u.fs.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	tmp := to + ".migrating"
	if err := u.fs.WriteFile(tmp, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := u.fs.Rename(tmp, to); err != nil {
		return err
	}
	return u.fs.Remove(from)
}

// moveDir relocates a directory's files one by one, then removes
// source directories that emptied out. Ignored content stays behind,
// and any directory still holding it survives.
func (u *Unfolder) moveDir(m resolver.Migration) error {
	if _, err := u.fs.Lstat(m.From); os.IsNotExist(err) {
		return nil
	}
	err := u.scan.Walk(m.From, func(entry scanner.Entry) error {
		logical := m.Logical + "/" + entry.Logical
		if u.matcher.Match(logical) {
			u.logger.Debug().Str("path", logical).Msg("ignored, staying in source store")
			if entry.Kind == types.KindDir {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Kind == types.KindDir {
			return nil
		}
		return u.moveFile(filepath.Join(m.From, entry.Logical), filepath.Join(m.To, entry.Logical))
	})
	if err != nil {
		return err
	}
	_, err = u.pruneEmpty(m.From)
	return err
}

// pruneEmpty removes dir when nothing remains beneath it, recursing
// into subdirectories first. Reports whether dir was removed.
func (u *Unfolder) pruneEmpty(dir string) (bool, error) {
	entries, err := u.fs.ReadDir(dir)
	if err != nil {
		return false, err
	}
	empty := true
	for _, entry := range entries {
		if !entry.IsDir() {
			empty = false
			continue
		}
		removed, err := u.pruneEmpty(filepath.Join(dir, entry.Name()))
		if err != nil {
			return false, err
		}
		if !removed {
			empty = false
		}
	}
	if !empty {
		return false, nil
	}
	if err := u.fs.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}
