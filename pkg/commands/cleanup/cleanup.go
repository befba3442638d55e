// Package cleanup removes store content the ignore list has disowned:
// paths that were claimed once, then ignored, and now sit in a tier's
// backing store deploying nowhere.
package cleanup

import (
	"io/fs"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Options configures one cleanup run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// DryRun lists candidates without removing anything
	DryRun bool

	// Force skips the removal confirmation
	Force bool

	// Confirm is consulted before store content is removed. nil means
	// nothing can be confirmed and the run refuses to remove.
	Confirm func(candidates []Candidate) (bool, error)

	// Locker serializes real runs; nil means no locking
	Locker lock.Locker
}

// Candidate is one ignored path still present in a backing store. A
// matched directory is a single candidate covering its whole subtree.
type Candidate struct {
	Tier    string
	Logical string
	Kind    types.Kind

	// Path is the store location the removal targets
	Path string
}

// Failure records one candidate that could not be removed.
type Failure struct {
	Candidate Candidate
	Err       error
}

// Result reports a cleanup run.
type Result struct {
	DryRun bool

	// Candidates is everything the scan found, removed or not
	Candidates []Candidate

	// Removed lists the candidates actually deleted
	Removed []Candidate

	// Failed lists candidates whose removal failed; the rest of the
	// run carried on
	Failed []Failure
}

// Ok reports whether nothing is left to clean up or every removal landed.
func (r *Result) Ok() bool {
	return len(r.Failed) == 0
}

// Cleanup scans every tier's store for ignore-matched content and
// removes it. The manifest names the tiers: common, each host with
// claims, and system.
func Cleanup(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.cleanup")
	logger.Debug().Bool("dry_run", opts.DryRun).Msg("starting cleanup")

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
	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	result := &Result{DryRun: opts.DryRun}
	tiers := append([]string{paths.CommonTier}, m.HostNames()...)
	tiers = append(tiers, paths.SystemTier)
	scan := scanner.New(opts.FS)

	for _, tier := range tiers {
		err := scan.Walk(opts.Layout.TierStore(tier), func(entry scanner.Entry) error {
			logical := entry.Logical
			if tier == paths.SystemTier {
				logical = "/" + logical
			}
			if !matcher.Match(logical) {
				return nil
			}
			result.Candidates = append(result.Candidates, Candidate{
				Tier:    tier,
				Logical: logical,
				Kind:    entry.Kind,
				Path:    opts.Layout.TierFilePath(tier, logical),
			})
			// A matched directory is removed whole; its contents are
			// not separate candidates.
			if entry.Kind == types.KindDir {
				return fs.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(result.Candidates) == 0 || opts.DryRun {
		logger.Info().
			Int("candidates", len(result.Candidates)).
			Bool("dry_run", opts.DryRun).
			Msg("cleanup finished without removals")
		return result, nil
	}

	if !opts.Force {
		ok, err := confirmRemovals(opts.Confirm, result.Candidates)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Newf(errors.ErrConflictUnresolved,
				"%d ignored path(s) await removal; confirm or re-run with --yes",
				len(result.Candidates))
		}
	}

	for _, candidate := range result.Candidates {
		if err := opts.FS.RemoveAll(candidate.Path); err != nil {
			result.Failed = append(result.Failed, Failure{
				Candidate: candidate,
				Err:       errors.Wrapf(err, errors.ErrFileWrite, "removing %s", candidate.Path),
			})
			logger.Warn().Err(err).Str("path", candidate.Path).Msg("removal failed")
			continue
		}
		result.Removed = append(result.Removed, candidate)
	}

	logger.Info().
		Int("candidates", len(result.Candidates)).
		Int("removed", len(result.Removed)).
		Int("failed", len(result.Failed)).
		Msg("cleanup finished")
	return result, nil
}

func confirmRemovals(confirm func([]Candidate) (bool, error), candidates []Candidate) (bool, error) {
	if confirm == nil {
		return false, nil
	}
	return confirm(candidates)
}
