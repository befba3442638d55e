package resolver

import (
	"errors"
	"sort"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// resolveCommon walks the common tier's claims and emits everything the
// narrow claims left to it. Directories deploy whole unless a narrow
// claim cuts inside, in which case the directory decomposes into
// per-child entries, recursively, down to the claimed paths.
func (r *Resolver) resolveCommon(m *manifest.Manifest, res *Resolution, state *resolveState) error {
	candidates, err := r.commonCandidates(m)
	if err != nil {
		return err
	}

	for _, cand := range candidates {
		if err := r.emitCommon(cand.logical, cand.kind, res, state); err != nil {
			return err
		}
	}
	return nil
}

type commonCandidate struct {
	logical string
	kind    types.Kind
}

// commonCandidates turns the common tier's claims into a non-overlapping
// set of subtree roots backed by the store. The whole-home claim expands
// to the store's top-level children; explicit claims deeper than another
// candidate fold into that candidate's subtree.
func (r *Resolver) commonCandidates(m *manifest.Manifest) ([]commonCandidate, error) {
	commonStore := r.layout.TierStore(paths.CommonTier)

	byPath := make(map[string]types.Kind)
	for _, claim := range m.CommonClaims() {
		if claim.ClaimsAll() {
			children, err := r.scan.Children(commonStore)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				byPath[child.Logical] = child.Kind
			}
			continue
		}

		// The store, not the claim, decides the kind: a dir claim whose
		// backing store holds a file deploys that file.
		kind, ok := r.scan.Exists(commonStore, claim.Path)
		if !ok {
			continue
		}
		byPath[claim.Path] = kind
	}

	sorted := make([]string, 0, len(byPath))
	for logical := range byPath {
		sorted = append(sorted, logical)
	}
	sort.Strings(sorted)

	var candidates []commonCandidate
	for _, logical := range sorted {
		if hasDirAncestor(byPath, logical) {
			continue
		}
		candidates = append(candidates, commonCandidate{logical: logical, kind: byPath[logical]})
	}
	return candidates, nil
}

func hasDirAncestor(byPath map[string]types.Kind, logical string) bool {
	for i := len(logical) - 1; i > 0; i-- {
		if logical[i] != '/' {
			continue
		}
		if kind, ok := byPath[logical[:i]]; ok && kind == types.KindDir {
			return true
		}
	}
	return false
}

// emitCommon resolves one common-owned subtree root.
func (r *Resolver) emitCommon(logical string, kind types.Kind, res *Resolution, state *resolveState) error {
	if state.matcher.Match(logical) {
		return nil
	}
	if state.ownedByNarrow[logical] {
		return nil
	}

	decompose := false
	if kind == types.KindDir {
		if r.narrowClaimInside(logical, state) {
			decompose = true
		} else {
			hit, err := r.ignoredInside(paths.CommonTier, logical, state)
			if err != nil {
				return err
			}
			decompose = hit
		}
	}

	if !decompose {
		res.Entries = append(res.Entries, Entry{
			Logical: logical,
			Kind:    kind,
			Tier:    paths.CommonTier,
			Source:  r.layout.TierFilePath(paths.CommonTier, logical),
			Target:  r.layout.HomePath(logical),
		})
		return nil
	}

	// A higher-precedence claim cuts into this directory: give up the
	// single directory link and resolve each child on its own. Children
	// the narrow tier does not take stay with common, individually now.
	children, err := r.scan.Children(r.layout.TierFilePath(paths.CommonTier, logical))
	if err != nil {
		return err
	}
	for _, child := range children {
		childLogical := logical + "/" + child.Logical
		if err := r.emitCommon(childLogical, child.Kind, res, state); err != nil {
			return err
		}
	}
	return nil
}

// narrowClaimInside reports whether the active host tier owns any path
// strictly inside dir.
func (r *Resolver) narrowClaimInside(dir string, state *resolveState) bool {
	prefix := dir + "/"
	for owned := range state.ownedByNarrow {
		if strings.HasPrefix(owned, prefix) {
			return true
		}
	}
	return false
}

// errStopWalk short-circuits a scan once an answer is known.
var errStopWalk = errors.New("stop walk")

// ignoredInside reports whether any path under a tier-stored directory
// matches an ignore pattern. Such a directory cannot deploy as a single
// symlink without exposing the ignored content, so it decomposes.
func (r *Resolver) ignoredInside(tier, dir string, state *resolveState) (bool, error) {
	if len(state.matcher.Patterns()) == 0 {
		return false, nil
	}
	found := false
	err := r.scan.Walk(r.layout.TierFilePath(tier, dir), func(entry scanner.Entry) error {
		if state.matcher.Match(dir + "/" + entry.Logical) {
			found = true
			return errStopWalk
		}
		return nil
	})
	if err != nil && err != errStopWalk {
		return false, err
	}
	return found, nil
}
