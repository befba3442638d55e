package resolver

import (
	"github.com/arthur-debert/dotfold/pkg/manifest"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Entry maps one logical path to the tier that owns it. Source is where
// the content lives in the repository; Target is where it deploys.
type Entry struct {
	// Logical is the manifest-style path: home-relative, or absolute for
	// the system tier
	Logical string

	// Kind tags whether one symlink covers a file or a whole directory
	Kind types.Kind

	// Tier is the owning tier after precedence: common, system, or the
	// active host
	Tier string

	// Source is the absolute backing path inside the owning tier's store
	Source string

	// Target is the absolute deployed location
	Target string
}

// Migration moves backing content between tier stores so that a narrow
// claim's entry has its source in place before linking. From always
// lies under the common store.
type Migration struct {
	Logical string
	Kind    types.Kind

	// From is the current location under the common store
	From string

	// To is the destination under the claiming tier's store
	To string
}

// Conflict records a narrow claim cutting into broader common ownership,
// and what it takes to honor it.
type Conflict struct {
	// Claim is the narrow claim
	Claim manifest.Claim

	// Dir is the common-owned directory that loses whole-directory
	// deployment because of this claim; empty when the claim targets a
	// top-level path
	Dir string

	// Migration is the content move required, nil when the narrow
	// tier's store already holds the content
	Migration *Migration

	// Blocked marks a conflict with no resolution strategy; Reason says
	// why. Blocked claims leave ownership where it was.
	Blocked bool
	Reason  string
}

// Resolution is the outcome of resolving a manifest against one host
// and the repository tree: the final ownership mapping plus the
// conflicts that deployment must settle first.
type Resolution struct {
	// Host is the host ID this resolution is for
	Host string

	// Entries is the ownership mapping, sorted by logical path
	Entries []Entry

	// Conflicts lists narrow claims needing unfolding, migration, or
	// operator attention
	Conflicts []Conflict

	index map[string]int
}

// Lookup returns the entry for a logical path.
func (r *Resolution) Lookup(logical string) (Entry, bool) {
	i, ok := r.index[logical]
	if !ok {
		return Entry{}, false
	}
	return r.Entries[i], true
}

// Migrations returns the content moves required before linking, in
// conflict order.
func (r *Resolution) Migrations() []Migration {
	var moves []Migration
	for _, c := range r.Conflicts {
		if c.Migration != nil && !c.Blocked {
			moves = append(moves, *c.Migration)
		}
	}
	return moves
}

// Blocked returns the conflicts that have no resolution strategy.
func (r *Resolution) Blocked() []Conflict {
	var blocked []Conflict
	for _, c := range r.Conflicts {
		if c.Blocked {
			blocked = append(blocked, c)
		}
	}
	return blocked
}
