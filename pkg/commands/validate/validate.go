// Package validate checks a host's manifest claims against the stores
// and the deployed home state without changing anything.
package validate

import (
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
	"github.com/arthur-debert/dotfold/pkg/validation"
)

// Options configures one validation run.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host is the resolved host tier name
	Host string
}

// Result carries every issue found, grouped by nothing: display layers
// group by class as they see fit.
type Result struct {
	Host   string
	Issues []validation.Issue
}

// Ok reports whether the deployment checks out clean.
func (r *Result) Ok() bool {
	return len(r.Issues) == 0
}

// Validate runs every check for the host. Validation never mutates and
// never locks, so it can run alongside anything.
func Validate(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.validate")
	logger.Debug().Str("host", opts.Host).Msg("starting validate")

	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}

	issues, err := validation.New(opts.FS, opts.Layout).Validate(m, opts.Host)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("host", opts.Host).Int("issues", len(issues)).Msg("validate finished")
	return &Result{Host: opts.Host, Issues: issues}, nil
}
