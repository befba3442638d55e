// Package status reports the resolved ownership for a host and how the
// live home state compares to it, without changing anything.
package status

import (
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/operations"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Options configures one status run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host is the resolved host tier name
	Host string
}

// Result is the host's full picture: who owns what, which store moves
// are pending, and what a deploy would do right now.
type Result struct {
	Host string

	// Entries is the resolved ownership, one entry per deployable path
	Entries []resolver.Entry

	// Migrations are store moves the next deploy would apply
	Migrations []resolver.Migration

	// Blocked lists conflicts with no resolution strategy
	Blocked []resolver.Conflict

	// Plan is what a deploy would do against the current home state
	Plan *operations.Plan
}

// Clean reports whether a deploy right now would change nothing.
func (r *Result) Clean() bool {
	if len(r.Migrations) > 0 || len(r.Blocked) > 0 {
		return false
	}
	for _, a := range r.Plan.Actions {
		if a.Kind != operations.ActionSkip {
			return false
		}
	}
	return true
}

// Status resolves the manifest for the host and diffs the result
// against home. The plan reflects the stores as they are, so pending
// migrations show up as links into their future location.
func Status(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.status")
	logger.Debug().Str("host", opts.Host).Msg("starting status")

	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}

	res, err := resolver.New(opts.FS, opts.Layout).Resolve(m, opts.Host)
	if err != nil {
		return nil, err
	}

	plan, err := operations.NewPlanner(opts.FS, opts.Layout).Build(res)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Host:       opts.Host,
		Entries:    res.Entries,
		Migrations: res.Migrations(),
		Blocked:    res.Blocked(),
		Plan:       plan,
	}

	logger.Debug().
		Str("host", opts.Host).
		Int("entries", len(result.Entries)).
		Int("actions", len(plan.Actions)).
		Bool("clean", result.Clean()).
		Msg("status finished")
	return result, nil
}
