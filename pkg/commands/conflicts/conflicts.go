// Package conflicts explains how overlapping claims resolve for a
// host: which directories decompose, which store moves are pending,
// and which claims stay blocked.
package conflicts

import (
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/types"
	"github.com/arthur-debert/dotfold/pkg/unfold"
)

// Options configures one conflicts run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host is the resolved host tier name
	Host string
}

// Result groups everything the resolver had to arbitrate.
type Result struct {
	Host string

	// Plans describe each directory that decomposes into per-child
	// deployments, with the overrides that caused it
	Plans []unfold.Plan

	// Migrations are every pending store move, including ones with no
	// enclosing decomposed directory
	Migrations []resolver.Migration

	// Blocked lists claims the resolver could not honor
	Blocked []resolver.Conflict
}

// Ok reports whether every conflict has a resolution strategy.
func (r *Result) Ok() bool {
	return len(r.Blocked) == 0
}

// Conflicts resolves the manifest and reports the arbitration without
// applying any of it.
func Conflicts(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.conflicts")
	logger.Debug().Str("host", opts.Host).Msg("starting conflicts")

	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}

	res, err := resolver.New(opts.FS, opts.Layout).Resolve(m, opts.Host)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Host:       opts.Host,
		Plans:      unfold.Plans(res),
		Migrations: res.Migrations(),
		Blocked:    res.Blocked(),
	}

	logger.Debug().
		Str("host", opts.Host).
		Int("plans", len(result.Plans)).
		Int("migrations", len(result.Migrations)).
		Int("blocked", len(result.Blocked)).
		Msg("conflicts finished")
	return result, nil
}
