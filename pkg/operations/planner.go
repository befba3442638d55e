package operations

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotfold/pkg/logging"
	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
	"github.com/arthur-debert/dotfold/pkg/scanner"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Planner turns a resolution into the action list that makes the home
// directory match it.
type Planner struct {
	fs     types.FS
	layout paths.Layout
	scan   *scanner.Scanner
	logger zerolog.Logger
}

// NewPlanner creates a Planner that reads live state through fsys.
func NewPlanner(fsys types.FS, layout paths.Layout) *Planner {
	return &Planner{
		fs:     fsys,
		layout: layout,
		scan:   scanner.New(fsys),
		logger: logging.GetLogger("planner"),
	}
}

// Build compares every resolved entry against the live home state and
// adds unlink-only steps for managed links whose entry is gone. The
// returned plan orders actions by logical path, unlink before link on
// the same path, so a stale directory link clears before links are
// laid down beneath it.
func (p *Planner) Build(res *resolver.Resolution) (*Plan, error) {
	plan := &Plan{Host: res.Host}

	stale, err := p.staleLinks(res)
	if err != nil {
		return nil, err
	}
	staleSet := make(map[string]bool, len(stale))
	for _, a := range stale {
		staleSet[a.Logical] = true
	}

	for _, entry := range res.Entries {
		plan.Actions = append(plan.Actions, p.classify(entry, staleSet)...)
	}
	plan.Actions = append(plan.Actions, stale...)

	sort.SliceStable(plan.Actions, func(i, j int) bool {
		a, b := plan.Actions[i], plan.Actions[j]
		if a.Logical != b.Logical {
			return a.Logical < b.Logical
		}
		return a.Kind == ActionUnlink && b.Kind != ActionUnlink
	})

	p.logger.Debug().
		Str("host", res.Host).
		Int("actions", len(plan.Actions)).
		Msg("deployment plan built")
	return plan, nil
}

// classify decides what one resolved entry needs done to its home
// path.
func (p *Planner) classify(entry resolver.Entry, staleSet map[string]bool) []Action {
	base := Action{
		Logical: entry.Logical,
		Source:  entry.Source,
		Target:  entry.Target,
		Tier:    entry.Tier,
	}

	// An ancestor that is itself a stale managed link gets unlinked
	// earlier in the plan; what Lstat sees through it now is store
	// content, not home state, so the entry plans as a plain link.
	for dir := parentLogical(entry.Logical); dir != "" && dir != "/"; dir = parentLogical(dir) {
		if staleSet[dir] {
			link := base
			link.Kind = ActionLink
			return []Action{link}
		}
	}

	info, err := p.fs.Lstat(entry.Target)
	if err != nil {
		// Absent, or in a state only the executor can surface, such
		// as an unreadable parent. Either way the step is a link.
		link := base
		link.Kind = ActionLink
		return []Action{link}
	}

	if info.Mode()&os.ModeSymlink != 0 {
		dest, err := p.fs.Readlink(entry.Target)
		if err == nil && dest == entry.Source {
			skip := base
			skip.Kind = ActionSkip
			skip.Reason = "already linked"
			return []Action{skip}
		}
		unlink := base
		unlink.Kind = ActionUnlink
		unlink.Reason = "link points elsewhere"
		link := base
		link.Kind = ActionLink
		return []Action{unlink, link}
	}

	unlink := base
	unlink.Kind = ActionUnlink
	unlink.Replaces = true
	if info.IsDir() {
		unlink.Reason = "replacing existing directory"
	} else {
		unlink.Reason = "replacing existing file"
	}
	link := base
	link.Kind = ActionLink
	return []Action{unlink, link}
}

// staleLinks finds symlinks pointing into the repository whose logical
// path no longer resolves to anything, the leftovers of an earlier
// deploy. Only directories mirroring managed territory are scanned:
// home's top level, ancestors of current entries, and directories
// present in the active tier stores. A scanned directory that turns
// out to be a symlink is a leaf; nothing beneath it is examined, since
// reading through it would reach store content instead of home state.
func (p *Planner) staleLinks(res *resolver.Resolution) ([]Action, error) {
	dirs, err := p.scanDirs(res)
	if err != nil {
		return nil, err
	}

	var actions []Action
	var dead []string
	for _, dir := range dirs {
		if underAny(dir, dead) {
			continue
		}
		homeDir := p.layout.HomePath(dir)
		if dir != "" {
			info, err := p.fs.Lstat(homeDir)
			if err != nil || info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
				dead = append(dead, dir)
				continue
			}
		}

		children, err := p.fs.ReadDir(homeDir)
		if err != nil {
			continue
		}
		for _, child := range children {
			logical := child.Name()
			if dir != "" {
				logical = dir + "/" + child.Name()
			}
			if _, managed := res.Lookup(logical); managed {
				continue
			}
			if child.Type()&os.ModeSymlink == 0 {
				continue
			}
			target := p.layout.HomePath(logical)
			dest, err := p.fs.Readlink(target)
			if err != nil || !p.layout.InRepo(dest) {
				continue
			}
			actions = append(actions, Action{
				Kind:    ActionUnlink,
				Logical: logical,
				Target:  target,
				Reason:  "no longer managed",
			})
		}
	}
	return actions, nil
}

// scanDirs builds the sorted set of logical directories the stale scan
// visits.
func (p *Planner) scanDirs(res *resolver.Resolution) ([]string, error) {
	set := map[string]bool{"": true}

	for _, entry := range res.Entries {
		for dir := parentLogical(entry.Logical); dir != "" && dir != "/"; dir = parentLogical(dir) {
			set[dir] = true
		}
	}

	// Mirror the stores: a directory deployed yesterday leaves its
	// shape in a store even after its claim is gone.
	tiers := []string{paths.CommonTier, res.Host, paths.SystemTier}
	for _, tier := range tiers {
		system := tier == paths.SystemTier
		err := p.scan.Walk(p.layout.TierStore(tier), func(entry scanner.Entry) error {
			if entry.Kind != types.KindDir {
				return nil
			}
			if system {
				set["/"+entry.Logical] = true
			} else {
				set[entry.Logical] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	dirs := make([]string, 0, len(set))
	for dir := range set {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func parentLogical(logical string) string {
	dir := path.Dir(logical)
	if dir == "." {
		return ""
	}
	return dir
}

func underAny(dir string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(dir, prefix+"/") {
			return true
		}
	}
	return false
}
