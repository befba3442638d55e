package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/errors"
)

// ValidatePath performs basic validation on a path.
// It checks for:
// - Empty paths
// - Null bytes
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}

	// Check path length (common filesystem limit)
	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}

	return nil
}

// ValidateLogicalPath checks that a manifest entry is usable as a logical
// path. Entries must survive ValidatePath and must not escape their anchor
// directory through parent references.
func ValidateLogicalPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return errors.Newf(errors.ErrInvalidInput,
				"path contains parent directory references: %s", path)
		}
	}

	return nil
}

// ValidateTierName ensures a tier name is valid for use as a repository
// subdirectory. Tier names must:
// - Not be empty
// - Not contain path separators
// - Not be reserved names (. or ..)
// - Not contain control characters
func ValidateTierName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "tier name cannot be empty")
	}

	// Check for path separators
	if strings.ContainsAny(name, "/\\") {
		return errors.New(errors.ErrInvalidInput, "tier name cannot contain path separators")
	}

	// Check for reserved names
	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "tier name cannot be '.' or '..'")
	}

	// Check for problematic characters
	invalidChars := ":*?\"<>|"
	if strings.ContainsAny(name, invalidChars) {
		return errors.Newf(errors.ErrInvalidInput,
			"tier name contains invalid characters: %s", invalidChars)
	}

	// Check for control characters
	for _, r := range name {
		if r < 32 {
			return errors.New(errors.ErrInvalidInput,
				"tier name contains control characters")
		}
	}

	return nil
}

// SanitizePath attempts to clean and make a path safe for use.
// It:
// - Expands a leading ~
// - Removes redundant separators
// - Resolves . and .. elements
func SanitizePath(path string) string {
	// First expand home directory if present
	path = expandHome(path)

	// Clean the path using filepath.Clean
	cleaned := filepath.Clean(path)

	// Ensure we don't return an empty string
	if cleaned == "" {
		return "."
	}

	return cleaned
}

// ContainsPath checks if child is contained within parent.
// Both paths are normalized before comparison.
func ContainsPath(parent, child string) bool {
	// Normalize both paths
	parent = SanitizePath(parent)
	child = SanitizePath(child)

	// Try to get relative path
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	// If relative path starts with .., child is outside parent
	return !strings.HasPrefix(rel, "..")
}

// IsHiddenPath returns true if the path represents a hidden file or directory.
// On Unix-like systems, this means the basename starts with a dot.
func IsHiddenPath(path string) bool {
	base := filepath.Base(path)
	return len(base) > 0 && base[0] == '.'
}
