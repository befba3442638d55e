// Package paths provides centralized path handling for dotfold.
//
// This package implements the XDG Base Directory specification and provides
// a consistent API for all path operations throughout the dotfold codebase.
// It handles:
//
//   - Repository root discovery and configuration
//   - XDG directory structure (data, config, cache, state)
//   - Path normalization and expansion
//   - Tier storage layout and logical path mapping
//   - Backup and lock file locations
//
// # Environment Variables
//
// The package respects the following environment variables:
//
//   - DOTFOLD_ROOT: Primary location of the dotfiles repository
//   - DOTFOLD_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/dotfold)
//   - DOTFOLD_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/dotfold)
//
// # Repository Layout
//
// A dotfold repository is laid out as:
//
//	<root>/manifest.yaml        the manifest describing every claim
//	<root>/common/home/<path>   files shared by every host
//	<root>/<host>/home/<path>   files specific to one host
//	<root>/system/<path>        absolute system paths, leading / trimmed
//
// TierFilePath and HomePath map between this storage layout and the
// deployed locations in the user's home directory.
//
// # Usage
//
//	import "github.com/arthur-debert/dotfold/pkg/paths"
//
//	p, err := paths.New("")  // Auto-detect repository root
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manifest := p.ManifestPath()
//	store := p.TierFilePath("common", ".zshrc")
//	target := p.HomePath(".zshrc")
package paths
