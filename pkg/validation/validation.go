// Package validation cross-checks the manifest against the repository
// stores and the live deployment area, reporting inconsistencies
// without repairing them.
//
// Every explicit claim lands in at most one class: orphaned-config (an
// ignore pattern contradicts the claim), missing-everywhere (no content
// anywhere), missing-in-repo (content deployed but never stored), or
// missing-symlink (stored but not correctly linked). The whole-home
// claim is skipped; it claims territory, not a path.
package validation

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Validator classifies manifest claims against repository and home
// state. It never mutates either.
type Validator struct {
	fs     types.FS
	layout paths.Layout
	logger zerolog.Logger
}

// New creates a validator for the repository described by layout.
func New(fsys types.FS, layout paths.Layout) *Validator {
	return &Validator{
		fs:     fsys,
		layout: layout,
		logger: logging.GetLogger("validation"),
	}
}

// Validate cross-checks every explicit claim relevant to host. Claims
// of other hosts are inert here: their deployment state lives on other
// machines.
func (v *Validator) Validate(m *manifest.Manifest, host string) ([]Issue, error) {
	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	res, err := resolver.New(v.fs, v.layout).Resolve(m, host)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	seen := make(map[string]bool)
	for _, claim := range m.ClaimsFor(host) {
		if claim.ClaimsAll() {
			continue
		}
		key := claim.Tier + ":" + claim.Path
		if seen[key] {
			continue
		}
		seen[key] = true

		if issue := v.classify(claim, matcher, res); issue != nil {
			issues = append(issues, *issue)
		}
	}

	v.logger.Debug().
		Str("host", host).
		Int("claims", len(seen)).
		Int("issues", len(issues)).
		Msg("validation complete")
	return issues, nil
}

// Contradictions reports only the orphaned-config issues: claims an
// ignore pattern also matches. The check needs no disk access, so
// deploy runs it before resolution and aborts while any exist.
func (v *Validator) Contradictions(m *manifest.Manifest, host string) ([]Issue, error) {
	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	var issues []Issue
	for _, claim := range m.ClaimsFor(host) {
		if claim.ClaimsAll() || !matcher.Match(claim.Path) {
			continue
		}
		issues = append(issues, orphanIssue(claim))
	}
	return issues, nil
}

// classify puts one claim in at most one class. Ignore contradictions
// come first: an orphaned claim is a manifest problem whatever the
// disk says.
func (v *Validator) classify(claim manifest.Claim, matcher *ignore.Matcher, res *resolver.Resolution) *Issue {
	if matcher.Match(claim.Path) {
		issue := orphanIssue(claim)
		return &issue
	}

	if !v.storeBacked(claim) {
		if v.homeOccupied(claim) {
			return &Issue{
				Class:   ClassMissingInRepo,
				Logical: claim.Path,
				Tier:    claim.Tier,
				Reason:  "exists at the deployed location but in no tier store",
				Hint:    fmt.Sprintf("copy it into %s", v.layout.TierFilePath(claim.Tier, claim.Path)),
			}
		}
		return &Issue{
			Class:   ClassMissingEverywhere,
			Logical: claim.Path,
			Tier:    claim.Tier,
			Reason:  "no content in any tier store and nothing deployed",
			Hint:    "remove the entry from the manifest, or create the file",
		}
	}

	entries := contained(res, claim)
	if len(entries) == 0 {
		// Backed but resolved to nothing: a blocked conflict owns this
		// claim, and the conflicts surface reports those.
		return nil
	}

	missing := 0
	for _, e := range entries {
		if !v.linked(e) {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}

	issue := &Issue{
		Class:   ClassMissingSymlink,
		Logical: claim.Path,
		Tier:    claim.Tier,
		Hint:    "run deploy to link it",
	}
	if len(entries) == 1 && entries[0].Logical == claim.Path {
		issue.Reason = v.linkProblem(entries[0])
	} else {
		issue.Reason = fmt.Sprintf("%d of %d resolved paths are not deployed", missing, len(entries))
	}
	return issue
}

func orphanIssue(claim manifest.Claim) Issue {
	return Issue{
		Class:   ClassOrphanedConfig,
		Logical: claim.Path,
		Tier:    claim.Tier,
		Reason:  "an ignore pattern matches this claim",
		Hint:    "remove the entry from the manifest, or adjust the ignore patterns",
	}
}

// storeBacked reports whether any store that could serve this claim
// holds content for it. Host claims fall back to the common store: a
// claim backed only there is still deployable, it just migrates first.
func (v *Validator) storeBacked(claim manifest.Claim) bool {
	if v.present(v.layout.TierFilePath(claim.Tier, claim.Path)) {
		return true
	}
	if claim.Tier == paths.CommonTier || claim.Tier == paths.SystemTier {
		return false
	}
	return v.present(v.layout.TierFilePath(paths.CommonTier, claim.Path))
}

// homeOccupied reports whether anything real sits at the claim's
// deployed location. A symlink counts only when its target resolves;
// a dangling link is not content worth committing to a store.
func (v *Validator) homeOccupied(claim manifest.Claim) bool {
	target := v.layout.HomePath(claim.Path)
	info, err := v.fs.Lstat(target)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return true
	}
	dest, err := v.fs.Readlink(target)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(target), dest)
	}
	return v.present(dest)
}

// linked reports whether one resolved entry is deployed exactly as
// resolution wants it: a symlink at the target pointing at the source.
func (v *Validator) linked(e resolver.Entry) bool {
	info, err := v.fs.Lstat(e.Target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	dest, err := v.fs.Readlink(e.Target)
	return err == nil && dest == e.Source
}

// linkProblem describes why a single resolved entry is not correctly
// deployed, in the same terms the planner uses.
func (v *Validator) linkProblem(e resolver.Entry) string {
	info, err := v.fs.Lstat(e.Target)
	if err != nil {
		return "in the repository but not deployed"
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "real content shadows the repository copy"
	}
	return "link points elsewhere"
}

func (v *Validator) present(path string) bool {
	_, err := v.fs.Lstat(path)
	return err == nil
}

// contained returns the resolved entries this claim covers. A file
// claim has at most one; a decomposed directory claim spreads over the
// per-child entries that replaced it.
func contained(res *resolver.Resolution, claim manifest.Claim) []resolver.Entry {
	if e, ok := res.Lookup(claim.Path); ok {
		return []resolver.Entry{e}
	}
	var entries []resolver.Entry
	for _, e := range res.Entries {
		if claim.Contains(e.Logical) {
			entries = append(entries, e)
		}
	}
	return entries
}
