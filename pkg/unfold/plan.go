package unfold

import (
	"sort"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/resolver"
)

// Plan describes how one directory claim decomposes into per-child
// deployments.
type Plan struct {
	// Dir is the common directory losing whole-directory deployment.
	Dir string
	// Overrides are the entries inside Dir owned by a narrower tier.
	Overrides []resolver.Entry
	// Keep are the entries inside Dir that stay with the common tier,
	// each deployed individually from now on.
	Keep []resolver.Entry
	// Migrations are the backing moves the overrides require.
	Migrations []resolver.Migration
}

// Plans groups a resolution's conflicts into one plan per decomposed
// directory. Blocked claims and migrations with no enclosing common
// directory belong to no plan; callers that display conflicts report
// those separately via Resolution.Blocked and Resolution.Migrations.
func Plans(res *resolver.Resolution) []Plan {
	byDir := make(map[string][]resolver.Migration)
	for _, c := range res.Conflicts {
		if c.Blocked || c.Dir == "" || c.Migration == nil {
			continue
		}
		byDir[c.Dir] = append(byDir[c.Dir], *c.Migration)
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	plans := make([]Plan, 0, len(dirs))
	for _, dir := range dirs {
		plan := Plan{Dir: dir, Migrations: byDir[dir]}
		prefix := dir + "/"
		for _, entry := range res.Entries {
			if !strings.HasPrefix(entry.Logical, prefix) {
				continue
			}
			if entry.Tier == paths.CommonTier {
				plan.Keep = append(plan.Keep, entry)
			} else {
				plan.Overrides = append(plan.Overrides, entry)
			}
		}
		plans = append(plans, plan)
	}
	return plans
}
