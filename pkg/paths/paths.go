// Package paths provides centralized path handling for dotfold.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotfold/pkg/errors"
)

// Environment variable names
const (
	// EnvRoot is the primary environment variable for the dotfiles repository location
	EnvRoot = "DOTFOLD_ROOT"

	// EnvDataDir overrides the XDG data directory for dotfold
	EnvDataDir = "DOTFOLD_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for dotfold
	EnvConfigDir = "DOTFOLD_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Repository layout names.
// IMPORTANT: These constants define dotfold's repository structure and are
// NOT user-configurable. They must remain consistent across all dotfold
// installations so that a repository written by one machine deploys cleanly
// on another. User-configurable paths belong in pkg/config instead.
const (
	// DotfoldDirName is the directory name for dotfold-specific files
	DotfoldDirName = "dotfold"

	// ManifestFileName is the name of the repository manifest
	ManifestFileName = "manifest.yaml"

	// RootConfigFileName is the name of the per-repository config file
	RootConfigFileName = "dotfold.toml"

	// CommonTier is the tier directory shared by every host
	CommonTier = "common"

	// SystemTier is the tier directory for absolute system paths
	SystemTier = "system"

	// HomeSubdir is the subdirectory inside a tier that mirrors the home directory
	HomeSubdir = "home"

	// BackupsDirName is the subdirectory for pre-deployment backups
	BackupsDirName = "backups"

	// LatestLinkName is the symlink inside a host's backup directory that
	// points at the most recent backup set
	LatestLinkName = "latest"

	// LogFileName is the name of the log file
	LogFileName = "dotfold.log"

	// lockPrefix namespaces dotfold lock files in the temp directory
	lockPrefix = "dotfold"
)

// Paths provides centralized path management for dotfold
type Paths interface {
	Root() string
	UsedFallback() bool
	Layout() Layout
	ManifestPath() string
	RootConfigPath() string
	TierDir(tier string) string
	TierFilePath(tier, logical string) string
	HomeDir() string
	HomePath(logical string) string
	LogicalPath(deployed string) (string, error)
	DataDir() string
	ConfigDir() string
	CacheDir() string
	BackupsRoot() string
	HostBackupsDir(host string) string
	LockPath() string
	LogFilePath() string
	NormalizePath(path string) (string, error)
	IsInRepo(path string) (bool, error)
}

// paths provides centralized path management for dotfold
type paths struct {
	// root is the dotfiles repository root
	root string

	// home is the user's home directory
	home string

	// xdgData is the XDG data directory
	xdgData string

	// xdgConfig is the XDG config directory
	xdgConfig string

	// xdgCache is the XDG cache directory
	xdgCache string

	// xdgState is the XDG state directory
	xdgState string

	// usedFallback indicates if we fell back to cwd (for warning display)
	usedFallback bool
}

// New creates a new Paths instance with the given repository root.
// If root is empty, it will be determined from environment variables
// or defaults.
func New(root string) (Paths, error) {
	p := &paths{}

	// Set up repository root
	if root == "" {
		found, usedFallback, err := findRoot()
		if err != nil {
			return nil, err
		}
		p.root = found
		p.usedFallback = usedFallback
	} else {
		p.root = expandHome(root)
		p.usedFallback = false
	}

	// Ensure the root is absolute
	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for repository root")
	}
	p.root = absRoot

	home, err := GetHomeDirectory()
	if err != nil {
		return nil, err
	}
	p.home = home

	// Set up XDG directories
	if err := p.setupXDGDirs(); err != nil {
		return nil, err
	}

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() error {
	// Data directory
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, DotfoldDirName)
	}

	// Config directory
	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, DotfoldDirName)
	}

	// Cache directory
	p.xdgCache = filepath.Join(xdg.CacheHome, DotfoldDirName)

	// State directory - XDG doesn't provide StateHome, so we check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, DotfoldDirName)
	} else {
		p.xdgState = filepath.Join(p.home, ".local", "state", DotfoldDirName)
	}

	return nil
}

// findRoot determines the repository root using the following priority:
// 1. DOTFOLD_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
//
// The function returns:
// - string: The resolved repository root path
// - bool: Whether the current working directory was used as fallback
// - error: Any error that occurred during resolution
//
// This allows dotfold to work in three common scenarios:
// - Explicit configuration via DOTFOLD_ROOT
// - Automatic detection when run from within a git-managed dotfiles repo
// - Fallback to current directory for quick testing or non-git setups
func findRoot() (string, bool, error) {
	// Check DOTFOLD_ROOT first (highest priority)
	if root := os.Getenv(EnvRoot); root != "" {
		return expandHome(root), false, nil
	}

	// Try to find git repository root
	gitRoot, err := findGitRoot()
	if err == nil && gitRoot != "" {
		if os.Getenv("DOTFOLD_DEBUG") != "" {
			fmt.Fprintf(os.Stderr, "Debug: findRoot using git root: %s\n", gitRoot)
		}
		return gitRoot, false, nil
	}

	// Fallback to current working directory with warning
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")

	output, err := cmd.Output()
	if err != nil {
		// Git command failed - not in a git repo or git not installed
		if os.Getenv("DOTFOLD_DEBUG") != "" {
			fmt.Fprintf(os.Stderr, "Debug: git command failed: %v\n", err)
		}
		return "", err
	}

	// Trim whitespace and return the path
	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}

	return gitRoot, nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// Root returns the dotfiles repository root
func (p *paths) Root() string {
	return p.root
}

// UsedFallback returns true if the current working directory was used as fallback
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

// Layout returns the repository/home mapping as a plain value for the
// resolution and planning layers
func (p *paths) Layout() Layout {
	return Layout{Root: p.root, Home: p.home}
}

// ManifestPath returns the path to the repository manifest
func (p *paths) ManifestPath() string {
	return p.Layout().ManifestPath()
}

// RootConfigPath returns the path to the per-repository config file
func (p *paths) RootConfigPath() string {
	return filepath.Join(p.root, RootConfigFileName)
}

// TierDir returns the directory holding a tier's files
func (p *paths) TierDir(tier string) string {
	return p.Layout().TierDir(tier)
}

// TierFilePath maps a logical path to its storage location inside a tier.
//
// Home tiers mirror the home directory under <root>/<tier>/home/, so
// ("common", ".zshrc") maps to <root>/common/home/.zshrc. The system tier
// mirrors absolute paths with the leading separator trimmed, so
// ("system", "/etc/hosts") maps to <root>/system/etc/hosts.
func (p *paths) TierFilePath(tier, logical string) string {
	return p.Layout().TierFilePath(tier, logical)
}

// HomeDir returns the user's home directory
func (p *paths) HomeDir() string {
	return p.home
}

// HomePath maps a logical path to its deployment location. Relative logical
// paths deploy under the home directory; absolute ones deploy as-is.
func (p *paths) HomePath(logical string) string {
	return p.Layout().HomePath(logical)
}

// LogicalPath is the inverse of HomePath: it maps a deployed location back
// to the logical path used by the manifest. Paths under the home directory
// become home-relative; other absolute paths are returned cleaned.
func (p *paths) LogicalPath(deployed string) (string, error) {
	normalized, err := p.NormalizePath(deployed)
	if err != nil {
		return "", err
	}
	return p.Layout().LogicalPath(normalized)
}

// DataDir returns the XDG data directory for dotfold
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for dotfold
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// CacheDir returns the XDG cache directory for dotfold
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// BackupsRoot returns the default directory for pre-deployment backups.
// The manifest's conflict_resolution.backup_location overrides this.
func (p *paths) BackupsRoot() string {
	return filepath.Join(p.xdgData, BackupsDirName)
}

// HostBackupsDir returns the backup directory for a specific host
func (p *paths) HostBackupsDir(host string) string {
	return filepath.Join(p.BackupsRoot(), host)
}

// LockPath returns the path to the advisory lock file for this repository.
// The name embeds the user and a hash of the root so that concurrent runs
// against different repositories do not contend.
func (p *paths) LockPath() string {
	user := os.Getenv("USER")
	if user == "" {
		user = "default"
	}

	h := fnv.New32a()
	h.Write([]byte(p.root))

	name := fmt.Sprintf("%s-%s-%08x.lock", lockPrefix, user, h.Sum32())
	return filepath.Join(os.TempDir(), name)
}

// LogFilePath returns the path to the dotfold log file.
// Respects XDG_STATE_HOME if set.
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	// Expand home directory
	expanded := expandHome(path)

	// Make absolute
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	// Clean the path
	return filepath.Clean(abs), nil
}

// IsInRepo checks if a path is within the repository root
func (p *paths) IsInRepo(path string) (bool, error) {
	normalized, err := p.NormalizePath(path)
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(p.root, normalized)
	if err != nil {
		return false, nil
	}

	// If the relative path starts with .., it's outside the repository
	return !strings.HasPrefix(rel, ".."), nil
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// GetHomeDirectoryWithDefault returns the home directory or a default value
func GetHomeDirectoryWithDefault(defaultDir string) string {
	homeDir, err := GetHomeDirectory()
	if err != nil {
		return defaultDir
	}
	return homeDir
}
