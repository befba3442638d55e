// Package backups lists and prunes the backup sets deploys have
// accumulated for a host.
package backups

import (
	"github.com/arthur-debert/dotfold/pkg/backup"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// ListOptions configures a backup listing.
type ListOptions struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host selects whose backup sets to list
	Host string

	// BackupsRoot is the default backup location; the manifest's
	// backup_location overrides it when set
	BackupsRoot string
}

// ListResult carries a host's backup sets, newest first.
type ListResult struct {
	Host string
	Sets []backup.Set
}

// List returns every backup set recorded for the host, newest first.
func List(opts ListOptions) (*ListResult, error) {
	logger := logging.GetLogger("commands.backups")

	root, err := backupsRoot(opts.FS, opts.Layout, opts.BackupsRoot)
	if err != nil {
		return nil, err
	}
	sets, err := backup.NewManager(opts.FS, opts.Layout, root).List(opts.Host)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("host", opts.Host).Int("sets", len(sets)).Msg("backups listed")
	return &ListResult{Host: opts.Host, Sets: sets}, nil
}

// PruneOptions configures a prune run.
type PruneOptions struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host selects whose backup sets to prune
	Host string

	// BackupsRoot is the default backup location; the manifest's
	// backup_location overrides it when set
	BackupsRoot string

	// Keep is how many of the newest sets survive
	Keep int

	// DryRun reports what would be removed without removing it
	DryRun bool

	// Locker serializes real runs; nil means no locking
	Locker lock.Locker
}

// PruneResult reports a prune run.
type PruneResult struct {
	Host   string
	Keep   int
	DryRun bool

	// Removed lists the ids of the sets the run removed (or would)
	Removed []string
}

// Prune removes every set beyond the Keep newest. A prune racing a
// deploy could strand the latest link, so real runs take the lock.
func Prune(opts PruneOptions) (*PruneResult, error) {
	logger := logging.GetLogger("commands.backups")
	logger.Debug().
		Str("host", opts.Host).
		Int("keep", opts.Keep).
		Bool("dry_run", opts.DryRun).
		Msg("starting prune")

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

	root, err := backupsRoot(opts.FS, opts.Layout, opts.BackupsRoot)
	if err != nil {
		return nil, err
	}
	mgr := backup.NewManager(opts.FS, opts.Layout, root)

	result := &PruneResult{Host: opts.Host, Keep: opts.Keep, DryRun: opts.DryRun}

	if opts.DryRun {
		sets, err := mgr.List(opts.Host)
		if err != nil {
			return nil, err
		}
		keep := opts.Keep
		if keep < 0 {
			keep = 0
		}
		if len(sets) > keep {
			for _, set := range sets[keep:] {
				result.Removed = append(result.Removed, set.ID)
			}
		}
		return result, nil
	}

	removed, err := mgr.Prune(opts.Host, opts.Keep)
	if err != nil {
		return nil, err
	}
	result.Removed = removed

	logger.Info().
		Str("host", opts.Host).
		Int("removed", len(removed)).
		Int("keep", opts.Keep).
		Msg("prune finished")
	return result, nil
}

// backupsRoot applies the manifest's backup_location override to the
// configured default.
func backupsRoot(fsys types.FS, layout paths.Layout, fallback string) (string, error) {
	m, err := manifest.Load(fsys, layout.ManifestPath())
	if err != nil {
		return "", err
	}
	if m.Conflict.BackupLocation != "" {
		return m.Conflict.BackupLocation, nil
	}
	return fallback, nil
}
