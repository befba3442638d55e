// Package discover walks the home directory for content the manifest
// does not manage yet, and appends chosen paths to the manifest.
package discover

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/lock"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Options configures one discovery scan.
type Options struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Host is the resolved host tier name
	Host string

	// Skip lists home-relative paths the scan never descends into,
	// beyond the built-in version-control and cache exclusions
	Skip []string
}

// Candidate is one unmanaged path found under home. A directory
// candidate covers its whole subtree.
type Candidate struct {
	Logical string
	Kind    types.Kind
}

// Result carries the scan's findings in walk order.
type Result struct {
	Host       string
	Candidates []Candidate
}

// Discover scans home for content that is neither claimed, ignored,
// nor deployed from the repository. Deployed symlinks are managed by
// definition; a claimed directory covers everything beneath it; an
// unmanaged directory is reported once, not per child.
func Discover(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.discover")
	logger.Debug().Str("host", opts.Host).Msg("starting discover")

	m, err := manifest.Load(opts.FS, opts.Layout.ManifestPath())
	if err != nil {
		return nil, err
	}
	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, err
	}

	// The whole-home claim deploys whatever the common store holds; it
	// says nothing about unrelated real content, so it does not mark
	// anything as managed here.
	var claims []manifest.Claim
	for _, claim := range m.ClaimsFor(opts.Host) {
		if claim.ClaimsAll() || claim.Tier == paths.SystemTier {
			continue
		}
		claims = append(claims, claim)
	}

	skip := make(map[string]bool, len(opts.Skip))
	for _, s := range opts.Skip {
		skip[strings.TrimSuffix(s, "/")] = true
	}

	result := &Result{Host: opts.Host}
	err = scanner.New(opts.FS).Walk(opts.Layout.Home, func(entry scanner.Entry) error {
		logical := entry.Logical

		if entry.Kind == types.KindDir {
			if strings.HasPrefix(path.Base(logical), ".git") || skip[logical] || matcher.Match(logical) {
				return fs.SkipDir
			}
		} else if skip[logical] || matcher.Match(logical) {
			return nil
		}

		for _, claim := range claims {
			if claim.Contains(logical) {
				if entry.Kind == types.KindDir {
					return fs.SkipDir
				}
				return nil
			}
		}

		if deployedLink(opts.FS, opts.Layout, logical) {
			return nil
		}

		if entry.Kind == types.KindDir {
			// A dir with claims beneath it is partly managed: descend
			// and report its children individually instead.
			for _, claim := range claims {
				if strings.HasPrefix(claim.Path, logical+"/") {
					return nil
				}
			}
			result.Candidates = append(result.Candidates, Candidate{Logical: logical, Kind: entry.Kind})
			return fs.SkipDir
		}
		result.Candidates = append(result.Candidates, Candidate{Logical: logical, Kind: entry.Kind})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", opts.Host).
		Int("candidates", len(result.Candidates)).
		Msg("discover finished")
	return result, nil
}

// deployedLink reports whether the home path is a symlink into the
// repository: already-deployed content the scan must not resurface.
func deployedLink(fsys types.FS, layout paths.Layout, logical string) bool {
	target := layout.HomePath(logical)
	info, err := fsys.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	dest, err := fsys.Readlink(target)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(target), dest)
	}
	return layout.InRepo(dest)
}

// AddOptions configures appending discovered paths to the manifest.
type AddOptions struct {
	// FS is the filesystem the run operates on
	FS types.FS

	// Layout binds the repository root and the home directory
	Layout paths.Layout

	// Section is the manifest section to extend: "common", "ignore" or
	// a host tier name
	Section string

	// Paths are the logical paths to add, as reported by Discover
	Paths []string

	// DryRun reports the entries that would be written without editing
	// the manifest
	DryRun bool

	// Locker serializes real runs; nil means no locking
	Locker lock.Locker
}

// AddResult reports what an add wrote (or would write).
type AddResult struct {
	Section string
	DryRun  bool

	// Entries are the manifest entries in their written form, with
	// directory decorations applied
	Entries []string
}

// Add appends paths to a manifest section. Directories become directory
// claims ("path/") in tier sections and subtree patterns ("path/**") in
// the ignore section, matching how the manifest expresses each.
func Add(opts AddOptions) (*AddResult, error) {
	logger := logging.GetLogger("commands.discover")
	logger.Debug().
		Str("section", opts.Section).
		Int("paths", len(opts.Paths)).
		Bool("dry_run", opts.DryRun).
		Msg("starting add")

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

	result := &AddResult{Section: opts.Section, DryRun: opts.DryRun}
	for _, logical := range opts.Paths {
		result.Entries = append(result.Entries, decorate(opts, logical))
	}

	if opts.DryRun {
		return result, nil
	}

	if err := manifest.Append(opts.FS, opts.Layout.ManifestPath(), opts.Section, result.Entries); err != nil {
		return nil, err
	}

	logger.Info().
		Str("section", opts.Section).
		Strs("entries", result.Entries).
		Msg("manifest extended")
	return result, nil
}

// decorate turns a logical path into its manifest entry form for the
// target section.
func decorate(opts AddOptions, logical string) string {
	info, err := opts.FS.Lstat(opts.Layout.HomePath(logical))
	isDir := err == nil && info.IsDir()
	if !isDir {
		return logical
	}
	if opts.Section == "ignore" {
		return logical + "/**"
	}
	return logical + "/"
}
