// Package resolver computes which tier owns every managed path. It is a
// pure function of the manifest, the host ID and the repository tree:
// ignore excludes a path from every tier, a host tier beats common, and
// a directory deploys as one symlink only while no higher-precedence
// claim cuts into it. Resolution never mutates anything; the migrations
// it reports are applied by the unfold step.
package resolver

import (
	"path"
	"sort"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/errors"
	"github.com/arthur-debert/dotfold/pkg/ignore"
	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Resolver resolves manifests against one repository tree.
type Resolver struct {
	fs     types.FS
	layout paths.Layout
	scan   *scanner.Scanner
	logger zerolog.Logger
}

// New creates a resolver for the repository described by layout.
func New(fsys types.FS, layout paths.Layout) *Resolver {
	return &Resolver{
		fs:     fsys,
		layout: layout,
		scan:   scanner.New(fsys),
		logger: logging.GetLogger("resolver"),
	}
}

// Resolve computes the ownership mapping for host. Claims matched by an
// ignore pattern are excluded here and surface through validation; two
// equal-precedence non-common claims on the same path are a manifest
// error, never a silent pick.
func (r *Resolver) Resolve(m *manifest.Manifest, host string) (*Resolution, error) {
	matcher, err := ignore.New(m.Ignore)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "invalid ignore pattern")
	}

	if err := checkAmbiguity(m, host); err != nil {
		return nil, err
	}

	res := &Resolution{Host: host}
	state := &resolveState{
		matcher:       matcher,
		ownedByNarrow: make(map[string]bool),
	}

	// Narrow claims first: they decide which paths the broader common
	// walk must leave alone.
	for _, claim := range m.HostClaims(host) {
		if matcher.Match(claim.Path) {
			continue
		}
		if err := r.resolveNarrow(claim, res, state); err != nil {
			return nil, err
		}
	}

	if err := r.resolveCommon(m, res, state); err != nil {
		return nil, err
	}

	for _, claim := range m.SystemClaims() {
		if matcher.Match(claim.Path) {
			continue
		}
		if err := r.resolveSystem(claim, res, state); err != nil {
			return nil, err
		}
	}

	sort.Slice(res.Entries, func(i, j int) bool {
		return res.Entries[i].Logical < res.Entries[j].Logical
	})
	res.index = make(map[string]int, len(res.Entries))
	for i, entry := range res.Entries {
		res.index[entry.Logical] = i
	}

	r.logger.Debug().
		Str("host", host).
		Int("entries", len(res.Entries)).
		Int("conflicts", len(res.Conflicts)).
		Msg("resolution complete")
	return res, nil
}

// resolveState carries the per-resolution bookkeeping shared between the
// narrow and common phases.
type resolveState struct {
	matcher *ignore.Matcher

	// ownedByNarrow marks logical paths the active host tier ends up
	// owning, so the common walk skips them and decomposes around them
	ownedByNarrow map[string]bool
}

// resolveNarrow handles one active host claim. The claim wins the path
// whenever backing content exists in the host store, or in the common
// store from where it migrates.
func (r *Resolver) resolveNarrow(claim manifest.Claim, res *Resolution, state *resolveState) error {
	hostStore := r.layout.TierStore(claim.Tier)
	commonStore := r.layout.TierStore(paths.CommonTier)

	hostKind, inHost := r.scan.Exists(hostStore, claim.Path)
	commonKind, inCommon := r.scan.Exists(commonStore, claim.Path)

	if !inHost && !inCommon {
		// Nothing to deploy; validation classifies the claim.
		return nil
	}

	diskKind, contentTier := hostKind, claim.Tier
	if !inHost {
		diskKind, contentTier = commonKind, paths.CommonTier
	}
	if mismatch, reason := claimMismatch(claim, diskKind); mismatch {
		res.Conflicts = append(res.Conflicts, Conflict{
			Claim:   claim,
			Blocked: true,
			Reason:  reason,
		})
		return nil
	}

	if err := r.emitNarrow(claim.Tier, contentTier, claim.Path, diskKind, res, state); err != nil {
		return err
	}

	// A copy under common means content must move: either the promotion
	// of a common file into this tier, or a stale duplicate left behind
	// by an interrupted run.
	if inCommon {
		res.Conflicts = append(res.Conflicts, Conflict{
			Claim: claim,
			Dir:   r.commonParentDir(claim.Path),
			Migration: &Migration{
				Logical: claim.Path,
				Kind:    commonKind,
				From:    r.layout.TierFilePath(paths.CommonTier, claim.Path),
				To:      r.layout.TierFilePath(claim.Tier, claim.Path),
			},
		})
	}
	return nil
}

// resolveSystem handles one system tier claim. System content deploys
// to absolute paths and never interacts with the home tiers.
func (r *Resolver) resolveSystem(claim manifest.Claim, res *Resolution, state *resolveState) error {
	systemStore := r.layout.TierStore(paths.SystemTier)

	diskKind, ok := r.scan.Exists(systemStore, trimRoot(claim.Path))
	if !ok {
		return nil
	}
	if mismatch, reason := claimMismatch(claim, diskKind); mismatch {
		res.Conflicts = append(res.Conflicts, Conflict{
			Claim:   claim,
			Blocked: true,
			Reason:  reason,
		})
		return nil
	}

	return r.emitNarrow(paths.SystemTier, paths.SystemTier, claim.Path, diskKind, res, state)
}

// emitNarrow emits entries for a subtree owned by a non-common tier.
// contentTier is where the backing currently lives (the claiming tier,
// or common before migration); Source paths always point into the
// claiming tier's store. Directories holding ignored content decompose
// so the ignored paths stay out of the deployment.
func (r *Resolver) emitNarrow(claimTier, contentTier, logical string, kind types.Kind, res *Resolution, state *resolveState) error {
	if state.matcher.Match(logical) {
		return nil
	}

	if kind == types.KindDir {
		hit, err := r.ignoredInside(contentTier, logical, state)
		if err != nil {
			return err
		}
		if hit {
			children, err := r.scan.Children(r.layout.TierFilePath(contentTier, logical))
			if err != nil {
				return err
			}
			for _, child := range children {
				childLogical := logical + "/" + child.Logical
				if err := r.emitNarrow(claimTier, contentTier, childLogical, child.Kind, res, state); err != nil {
					return err
				}
			}
			return nil
		}
	}

	res.Entries = append(res.Entries, Entry{
		Logical: logical,
		Kind:    kind,
		Tier:    claimTier,
		Source:  r.layout.TierFilePath(claimTier, logical),
		Target:  r.layout.HomePath(logical),
	})
	state.ownedByNarrow[logical] = true
	return nil
}

// commonParentDir returns the claim's parent directory when it exists
// under the common store: the directory that loses whole-directory
// deployment to this claim.
func (r *Resolver) commonParentDir(logical string) string {
	parent := path.Dir(logical)
	if parent == "." || parent == "/" {
		return ""
	}
	commonStore := r.layout.TierStore(paths.CommonTier)
	if kind, ok := r.scan.Exists(commonStore, parent); ok && kind == types.KindDir {
		return parent
	}
	return ""
}

// claimMismatch reports a claim whose backing content has the wrong
// kind. There is no strategy for deploying a directory as a file claim
// or vice versa, so these block instead of guessing.
func claimMismatch(claim manifest.Claim, disk types.Kind) (bool, string) {
	if claim.Kind == types.KindFile && disk == types.KindDir {
		return true, "claimed as a file but backed by a directory"
	}
	if claim.Kind == types.KindDir && disk == types.KindFile {
		return true, "claimed as a directory but backed by a file"
	}
	return false, ""
}

// checkAmbiguity rejects a manifest where two equal-precedence
// non-common tiers claim the identical path for this host.
func checkAmbiguity(m *manifest.Manifest, host string) error {
	claimed := make(map[string]string)
	narrow := append(m.HostClaims(host), m.SystemClaims()...)
	for _, claim := range narrow {
		if other, ok := claimed[claim.Path]; ok && other != claim.Tier {
			return errors.Newf(errors.ErrClaimAmbiguous,
				"path %q is claimed by both %s and %s with equal precedence",
				claim.Path, other, claim.Tier)
		}
		claimed[claim.Path] = claim.Tier
	}
	return nil
}

func trimRoot(logical string) string {
	if len(logical) > 0 && logical[0] == '/' {
		return logical[1:]
	}
	return logical
}
