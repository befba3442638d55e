// Package deploy runs the full deployment pipeline for one host:
// resolve the manifest, apply pending store migrations, plan link
// operations against live home state, back up anything the plan
// overwrites, and execute.
package deploy

import (
	"sort"

	"github.com/arthur-debert/dotfold/pkg/backup"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/operations"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/types"
	"github.com/arthur-debert/dotfold/pkg/unfold"
	"github.com/arthur-debert/dotfold/pkg/validation"
)

// Options configures one deployment run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host is the resolved host tier name
	Host string

	// BackupsRoot is the default backup location; the manifest's
	// backup_location overrides it when set
	BackupsRoot string

	// DryRun computes and reports the full run without mutating anything
	DryRun bool

	// Force skips the interactive overwrite confirmation
	Force bool

	// Confirm is consulted before real content is overwritten when the
	// manifest asks for interactive confirmation. nil means nothing can
	// be confirmed and the run refuses to overwrite.
	Confirm func(paths []string) (bool, error)

	// Locker serializes real runs; nil means no locking
	Locker lock.Locker
}

// Result reports everything one run did, or would do under dry-run.
type Result struct {
	Host   string
	DryRun bool

	// Migrations are the store moves unfolding applied (or would apply)
	Migrations []resolver.Migration

	// Blocked lists conflicts with no resolution strategy; their paths
	// kept their previous state while the rest of the run proceeded
	Blocked []resolver.Conflict

	// BackupID identifies the snapshot taken before overwrites, empty
	// when nothing needed backing up
	BackupID string

	// BackupFailed lists paths whose pre-overwrite backup failed and
	// whose deployment was therefore withheld
	BackupFailed []string

	// Execution is the per-path outcome of the plan
	Execution *operations.Result
}

// Ok reports whether the run completed with nothing blocked, withheld,
// or failed.
func (r *Result) Ok() bool {
	return len(r.Blocked) == 0 && len(r.BackupFailed) == 0 && r.Execution.Ok()
}

// Deploy runs the pipeline. Structural problems (lock held, manifest
// errors, a failed migration) abort with an error before any linking;
// per-path problems land in the Result instead.
func Deploy(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.deploy")
	logger.Debug().Str("host", opts.Host).Bool("dry_run", opts.DryRun).Msg("starting deploy")

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

	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}

	// A claim the ignore list contradicts makes every run ambiguous;
	// deploy refuses until the manifest is consistent.
	orphans, err := validation.New(opts.FS, opts.Layout).Contradictions(m, opts.Host)
	if err != nil {
		return nil, err
	}
	if len(orphans) > 0 {
		return nil, errors.Newf(errors.ErrManifestInvalid,
			"%d manifest entries are contradicted by ignore patterns, run validate to list them",
			len(orphans))
	}

	res, err := resolver.New(opts.FS, opts.Layout).Resolve(m, opts.Host)
	if err != nil {
		return nil, err
	}

	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	result := &Result{
		Host:       opts.Host,
		DryRun:     opts.DryRun,
		Migrations: res.Migrations(),
		Blocked:    res.Blocked(),
	}

	if _, err := unfold.New(opts.FS, matcher).Apply(result.Migrations, opts.DryRun); err != nil {
		return nil, err
	}

	plan, err := operations.NewPlanner(opts.FS, opts.Layout).Build(res)
	if err != nil {
		return nil, err
	}

	overwrites := plan.Overwrites()
	if len(overwrites) > 0 && !opts.DryRun {
		if m.Conflict.InteractiveConfirm && !opts.Force {
			ok, err := confirmOverwrites(opts.Confirm, overwrites)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.Newf(errors.ErrConflictUnresolved,
					"%d path(s) hold real content; confirm the overwrite or re-run with --yes",
					len(overwrites))
			}
		}

		if m.Conflict.BackupExisting {
			root := opts.BackupsRoot
			if m.Conflict.BackupLocation != "" {
				root = m.Conflict.BackupLocation
			}
			set, failures, err := backup.NewManager(opts.FS, opts.Layout, root).
				Snapshot(opts.Host, overwrites, "pre-deploy")
			if err != nil {
				return nil, err
			}
			if set != nil {
				result.BackupID = set.ID
			}
			if len(failures) > 0 {
				withheld := make(map[string]bool, len(failures))
				for logical := range failures {
					withheld[logical] = true
					result.BackupFailed = append(result.BackupFailed, logical)
				}
				sort.Strings(result.BackupFailed)
				plan = plan.Without(withheld)
			}
		}
	}

	result.Execution = operations.NewExecutor(opts.FS, opts.DryRun).Execute(plan)

	logger.Info().
		Str("host", opts.Host).
		Bool("dry_run", opts.DryRun).
		Int("applied", len(result.Execution.Applied)).
		Int("skipped", len(result.Execution.Skipped)).
		Int("failed", len(result.Execution.Failed)).
		Msg("deploy finished")
	return result, nil
}

func confirmOverwrites(confirm func([]string) (bool, error), overwrites []operations.Action) (bool, error) {
	if confirm == nil {
		return false, nil
	}
	logicals := make([]string, 0, len(overwrites))
	for _, a := range overwrites {
		logicals = append(logicals, a.Logical)
	}
	return confirm(logicals)
}
