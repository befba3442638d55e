package manifest

import (
	"path/filepath"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/paths"
)

// Validate checks the manifest's shape: tier names usable as repository
// subdirectories, home entries relative, system entries absolute, and no
// tier claiming the same path twice. Contradictions against the ignore
// list are a per-path concern and are reported by validation runs, not
// here.
func (m *Manifest) Validate() error {
	if err := validateHomeEntries(paths.CommonTier, m.Common, true); err != nil {
		return err
	}

	for _, host := range m.HostNames() {
		if err := paths.ValidateTierName(host); err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid,
				"invalid host tier name %q", host)
		}
		if err := validateHomeEntries(host, m.Hosts[host], false); err != nil {
			return err
		}
	}

	if err := validateSystemEntries(m.System); err != nil {
		return err
	}

	if err := ignore.CheckPatterns(m.Ignore); err != nil {
		return errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	return nil
}

// validateHomeEntries checks one tier's home-relative entries. Only the
// common tier may carry the whole-home claim "".
func validateHomeEntries(tier string, entries []string, allowAll bool) error {
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry == "" {
			if !allowAll {
				return errors.Newf(errors.ErrManifestInvalid,
					"tier %q: the whole-home claim \"\" is only valid under common", tier)
			}
			if seen[""] {
				return errors.Newf(errors.ErrManifestInvalid,
					"tier %q: whole-home claim listed twice", tier)
			}
			seen[""] = true
			continue
		}

		if filepath.IsAbs(entry) {
			return errors.Newf(errors.ErrManifestInvalid,
				"tier %q: entry %q must be relative to the home directory", tier, entry)
		}
		if err := paths.ValidateLogicalPath(entry); err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid,
				"tier %q: invalid entry %q", tier, entry)
		}

		claim := parseClaim(tier, entry)
		if seen[claim.Path] {
			return errors.Newf(errors.ErrManifestInvalid,
				"tier %q: path %q claimed twice", tier, claim.Path)
		}
		seen[claim.Path] = true
	}
	return nil
}

// validateSystemEntries checks system tier entries, which live outside
// the home directory and must be absolute.
func validateSystemEntries(entries []string) error {
	seen := make(map[string]bool)
	for _, entry := range entries {
		if !filepath.IsAbs(entry) {
			return errors.Newf(errors.ErrManifestInvalid,
				"system entry %q must be an absolute path", entry)
		}
		if err := paths.ValidateLogicalPath(entry); err != nil {
			return errors.Wrapf(err, errors.ErrManifestInvalid,
				"invalid system entry %q", entry)
		}

		claim := parseClaim(paths.SystemTier, entry)
		if seen[claim.Path] {
			return errors.Newf(errors.ErrManifestInvalid,
				"system path %q claimed twice", claim.Path)
		}
		seen[claim.Path] = true
	}
	return nil
}
