// Package genconfig renders dotfold's configuration: the annotated
// template users start from, or the fully-resolved effective values.
package genconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/dotfold/pkg/config"
	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Options configures one genconfig run.
type Options struct {
	// FS is the filesystem writes go through
	FS types.FS

	// Root is the repository root, used for the effective-config layers
	// and as the write target. Empty renders without root-level config.
	Root string

	// Effective renders the resolved configuration (defaults, user and
	// root files, environment) instead of the annotated template
	Effective bool

	// Write saves the template to <root>/dotfold.toml instead of just
	// returning it
	Write bool
}

// Result carries the rendered configuration.
type Result struct {
	Content string

	// Written is the path the template was saved to; empty when only
	// printing or when an existing file was left alone
	Written string
}

// GenConfig renders the requested view of the configuration. Write mode
// never clobbers an existing config file.
func GenConfig(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.genconfig")

	if opts.Effective {
		cfg, err := config.Load(opts.Root)
		if err != nil {
			return nil, err
		}
		out, err := toml.Marshal(cfg)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
		}
		logger.Debug().Msg("rendered effective configuration")
		return &Result{Content: string(out)}, nil
	}

	result := &Result{Content: config.GenerateConfigContent()}
	if !opts.Write {
		logger.Debug().Msg("rendered configuration template")
		return result, nil
	}

	target := filepath.Join(opts.Root, paths.RootConfigFileName)
	if _, err := opts.FS.Lstat(target); err == nil {
		logger.Warn().Str("path", target).Msg("config file already exists, leaving it alone")
		return result, nil
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "checking %s", target)
	}

	if err := opts.FS.WriteFile(target, []byte(result.Content), 0o644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "writing %s", target)
	}
	result.Written = target

	logger.Info().Str("path", target).Msg("config template written")
	return result, nil
}
