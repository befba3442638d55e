package operations

// ActionType enumerates the three things a deployment plan can do to a
// home path.
type ActionType int

const (
	// ActionLink creates the managed symlink for a resolved entry.
	ActionLink ActionType = iota

	// ActionUnlink clears whatever occupies a home path, either ahead
	// of a link on the same path or because the path is no longer
	// managed.
	ActionUnlink

	// ActionSkip records that a home path already links to the right
	// source and will not be touched.
	ActionSkip
)

// String returns the lowercase name used in logs and plan displays.
func (t ActionType) String() string {
	switch t {
	case ActionLink:
		return "link"
	case ActionUnlink:
		return "unlink"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Action is one step of a deployment plan, bound to a single home path.
type Action struct {
	Kind    ActionType
	Logical string // logical path the step is about
	Source  string // store path the link points at, set for ActionLink
	Target  string // home-side path the step touches
	Tier    string // owning tier, empty for no-longer-managed unlinks

	// Replaces marks an unlink that removes real content rather than a
	// symlink; those targets are what the backup captures.
	Replaces bool
	Reason   string
}

// Plan is the ordered action list one deploy run executes. Actions
// order by logical path, with the unlink for a path directly before
// its link and parent directories ahead of anything beneath them.
type Plan struct {
	Host    string
	Actions []Action
}

// Overwrites returns the actions that would remove real content: the
// targets a backup must capture and an interactive run confirms.
func (p *Plan) Overwrites() []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Kind == ActionUnlink && a.Replaces {
			out = append(out, a)
		}
	}
	return out
}

// Without returns a copy of the plan with every action on the given
// logical paths removed. Deploy uses it to hold back paths whose
// backup failed.
func (p *Plan) Without(blocked map[string]bool) *Plan {
	if len(blocked) == 0 {
		return p
	}
	kept := make([]Action, 0, len(p.Actions))
	for _, a := range p.Actions {
		if blocked[a.Logical] {
			continue
		}
		kept = append(kept, a)
	}
	return &Plan{Host: p.Host, Actions: kept}
}

// Failure records one action that could not be carried out.
type Failure struct {
	Action Action
	Err    error
}

// Result is what a run reports: every action accounted for as applied,
// skipped or failed, never a bare ok.
type Result struct {
	Applied []Action
	Skipped []Action
	Failed  []Failure
	DryRun  bool
}

// Ok reports whether every action landed.
func (r *Result) Ok() bool {
	return len(r.Failed) == 0
}

// FailedPaths returns the logical paths that failed, for display and
// exit-code decisions.
func (r *Result) FailedPaths() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.Action.Logical)
	}
	return out
}
