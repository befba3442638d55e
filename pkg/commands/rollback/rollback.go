// Package rollback restores home content from a backup set, undoing
// the overwrites a previous deploy made.
package rollback

import (
	"github.com/arthur-debert/dotfold/pkg/backup"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Options configures one rollback run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host selects whose backup sets to restore from
	Host string

	// BackupsRoot is the default backup location; the manifest's
	// backup_location overrides it when set
	BackupsRoot string

	// BackupID names the set to restore. Empty or "latest" picks the
	// newest set.
	BackupID string

	// DryRun lists what the set would restore without touching home
	DryRun bool

	// Locker serializes real runs; nil means no locking
	Locker lock.Locker
}

// Result reports the run. Under dry-run only Paths is populated.
type Result struct {
	Host     string
	BackupID string
	DryRun   bool

	// Paths lists every logical path the set covers
	Paths []string

	// Restore is the per-path outcome, nil under dry-run
	Restore *backup.Result
}

// Ok reports whether every recorded path came back.
func (r *Result) Ok() bool {
	return r.DryRun || r.Restore.Ok()
}

// Rollback restores the chosen backup set. Whatever occupies a
// captured path now, deployed link or newer content, is replaced by
// the backup's copy.
func Rollback(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.rollback")
	logger.Debug().
		Str("host", opts.Host).
		Str("backup", opts.BackupID).
		Bool("dry_run", opts.DryRun).
		Msg("starting rollback")

	if !opts.DryRun {
		locker := opts.Locker
		if locker == nil {
			locker = lock.Nop{}
		}
		release, err := locker.Acquire()
		if err != nil {
			return nil, err
		}
		defer func() { _ = release() }()
	}

	// The manifest drives the backup location and permission policy;
	// rollback must read the same knobs deploy wrote the set under.
	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}
	root := opts.BackupsRoot
	if m.Conflict.BackupLocation != "" {
		root = m.Conflict.BackupLocation
	}
	mgr := backup.NewManager(opts.FS, opts.Layout, root)

	set, err := pickSet(mgr, opts.Host, opts.BackupID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Host:     opts.Host,
		BackupID: set.ID,
		DryRun:   opts.DryRun,
	}
	for _, entry := range set.Metadata.Paths {
		result.Paths = append(result.Paths, entry.Logical)
	}

	if opts.DryRun {
		logger.Info().
			Str("backup", set.ID).
			Int("paths", len(result.Paths)).
			Msg("dry-run rollback, nothing restored")
		return result, nil
	}

	restore, err := mgr.Restore(opts.Host, set.ID, m.Conflict.PreservePermissions)
	if err != nil {
		return nil, err
	}
	result.Restore = restore

	logger.Info().
		Str("host", opts.Host).
		Str("backup", set.ID).
		Int("restored", len(restore.Restored)).
		Int("failed", len(restore.Failed)).
		Msg("rollback finished")
	return result, nil
}

// pickSet resolves the requested id to a set without restoring it, so
// dry-run can list the covered paths.
func pickSet(mgr *backup.Manager, host, id string) (*backup.Set, error) {
	sets, err := mgr.List(host)
	if err != nil {
		return nil, err
	}
	if id == "" || id == paths.LatestLinkName {
		if len(sets) == 0 {
			return nil, errors.Newf(errors.ErrBackupNotFound, "host %s has no backups", host)
		}
		return &sets[0], nil
	}
	for i := range sets {
		if sets[i].ID == id {
			return &sets[i], nil
		}
	}
	return nil, errors.Newf(errors.ErrBackupNotFound, "host %s has no backup %s", host, id)
}
