package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/errors"
)

// Layout binds a repository root and a home directory and maps logical
// paths between them. It is a plain value so the resolution and planning
// layers can carry it without touching environment state; Paths wraps it
// with discovery and XDG concerns for the CLI.
type Layout struct {
	// Root is the absolute dotfiles repository root
	Root string

	// Home is the absolute home directory deployments land in
	Home string
}

// ManifestPath returns the manifest location for this repository.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.Root, ManifestFileName)
}

// TierDir returns the directory holding a tier's files.
func (l Layout) TierDir(tier string) string {
	return filepath.Join(l.Root, tier)
}

// TierStore returns the root of a tier's backing store: the directory
// whose contents mirror the deployment area. Home tiers mirror the home
// directory under <root>/<tier>/home/; the system tier mirrors absolute
// paths directly under <root>/system/.
func (l Layout) TierStore(tier string) string {
	if tier == SystemTier {
		return filepath.Join(l.Root, SystemTier)
	}
	return filepath.Join(l.Root, tier, HomeSubdir)
}

// TierFilePath maps a logical path to its storage location inside a
// tier, so ("common", ".zshrc") maps to <root>/common/home/.zshrc and
// ("system", "/etc/hosts") maps to <root>/system/etc/hosts.
func (l Layout) TierFilePath(tier, logical string) string {
	if tier == SystemTier {
		return filepath.Join(l.Root, SystemTier, strings.TrimPrefix(logical, "/"))
	}
	return filepath.Join(l.Root, tier, HomeSubdir, logical)
}

// HomePath maps a logical path to its deployment location. Relative
// logical paths deploy under the home directory; absolute ones deploy
// as-is.
func (l Layout) HomePath(logical string) string {
	if filepath.IsAbs(logical) {
		return filepath.Clean(logical)
	}
	return filepath.Join(l.Home, logical)
}

// LogicalPath is the inverse of HomePath for already-absolute deployed
// locations: paths under home become home-relative, others stay
// absolute.
func (l Layout) LogicalPath(deployed string) (string, error) {
	cleaned := filepath.Clean(deployed)

	rel, err := filepath.Rel(l.Home, cleaned)
	if err == nil && !strings.HasPrefix(rel, "..") && rel != "." {
		return rel, nil
	}

	if !filepath.IsAbs(cleaned) {
		return "", errors.Newf(errors.ErrInvalidInput,
			"path is neither under home nor absolute: %s", deployed)
	}
	return cleaned, nil
}

// InRepo reports whether an absolute path points inside the repository.
// The planner uses this to tell managed symlinks from foreign ones.
func (l Layout) InRepo(path string) bool {
	rel, err := filepath.Rel(l.Root, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || !strings.HasPrefix(rel, "..")
}
